package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mcao2/skipera/internal/config"
	"github.com/mcao2/skipera/internal/coursera"
	"github.com/mcao2/skipera/internal/logging"
	"github.com/mcao2/skipera/internal/run"
	"github.com/mcao2/skipera/internal/solver"
	"github.com/mcao2/skipera/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	slug     string
	llm      bool
	eva      bool
	parallel bool
	workers  int
	tui      bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "skipera",
		Short:         "Auto-complete a Coursera course's videos, readings and assessments",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCourse(opts)
		},
	}

	cmd.Flags().StringVar(&opts.slug, "slug", "", "The course slug from the URL")
	cmd.Flags().BoolVar(&opts.llm, "llm", false, "Use an LLM to solve assessments (videos + readings + assessments)")
	cmd.Flags().BoolVar(&opts.eva, "eva", false, "Only solve assessments, skip videos and readings")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Process videos in parallel (faster but may trigger rate limits)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Max concurrent video workers (default 30)")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "Show an interactive progress dashboard")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("slug")

	return cmd
}

func runCourse(opts options) error {
	interactive := isatty.IsTerminal(os.Stdout.Fd())
	useTUI := opts.tui && interactive

	var log *zap.Logger
	if useTUI {
		// The dashboard owns the terminal; log lines would tear it.
		log = logging.Discard()
	} else {
		var err error
		log, err = logging.New(opts.verbose)
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer log.Sync()
	}

	if opts.eva && opts.llm {
		log.Warn("both --llm and --eva provided, using --eva mode (assessments only)")
		opts.llm = false
	}
	if opts.parallel && opts.eva {
		log.Warn("--parallel ignored in --eva mode (no videos to process)")
		opts.parallel = false
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.CAUTH == "" && interactive {
		if err := ui.RunSetup(cfg); err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}

	var clientOpts []coursera.ClientOption
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, coursera.WithBaseURL(cfg.BaseURL))
	}
	client, err := coursera.NewClient(cfg.CAUTH, clientOpts...)
	if err != nil {
		return err
	}

	userID, err := client.FetchUserID()
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	log.Info("authenticated", zap.String("user_id", userID))

	materials, err := client.GetCourseMaterials(opts.slug)
	if err != nil {
		return fmt.Errorf("fetching course materials: %w", err)
	}
	log.Info("fetched course",
		zap.String("course_id", materials.CourseID),
		zap.Int("modules", materials.Modules),
		zap.Int("items", len(materials.Items)))

	mode := run.NewMode(opts.llm, opts.eva)
	session := coursera.NewCourseSession(client, materials.CourseID, opts.slug)

	var llmClient *solver.LLMClient
	if mode.SolvesAssessments() {
		llmCfg := cfg.GetLLMConfig()
		llmClient, err = solver.NewLLMClient(llmCfg.Provider, llmCfg.APIKey,
			solver.WithLLMModel(llmCfg.Model),
			solver.WithLLMBaseURL(llmCfg.BaseURL))
		if err != nil {
			// Assessments will fail individually; the rest of the run
			// still proceeds.
			log.Warn("LLM not configured, assessments will fail", zap.Error(err))
			llmClient = nil
		}
	}
	solverRunner := solver.NewRunner(client, llmClient, materials.CourseID, log)

	workers := opts.workers
	if workers == 0 {
		workers = cfg.VideoWorkers
	}
	runCfg := run.Config{Mode: mode, Parallel: opts.parallel, VideoWorkers: workers}

	if useTUI {
		p := tea.NewProgram(ui.NewModel(), tea.WithAltScreen())
		orch := run.New(runCfg, session, session, solverRunner, log,
			run.WithNotify(func(msg interface{}) { p.Send(msg) }))
		go orch.Run(materials.Items)
		if _, err := p.Run(); err != nil {
			return err
		}
		return nil
	}

	orch := run.New(runCfg, session, session, solverRunner, log)
	report := orch.Run(materials.Items)
	log.Info("run finished",
		zap.Int("videos_succeeded", report.Videos.Succeeded),
		zap.Int("readings_succeeded", report.Readings.Succeeded),
		zap.Int("assessments_succeeded", report.Assessments.Succeeded),
		zap.Int("failures", report.Failures()),
		zap.Int("dropped", report.Dropped))
	return nil
}
