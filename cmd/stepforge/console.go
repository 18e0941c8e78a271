package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v0xg/stepforge/internal/action"
	"github.com/v0xg/stepforge/internal/ai"
	"github.com/v0xg/stepforge/internal/browser"
	"github.com/v0xg/stepforge/internal/codegen"
	"github.com/v0xg/stepforge/internal/history"
	"github.com/v0xg/stepforge/internal/screenshot"
	"github.com/v0xg/stepforge/internal/session"
)

const prompt = "stepforge> "

var errQuit = errors.New("quit")

func newConsoleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Drive a browser interactively and record each successful action",
		Long: `console opens an interactive prompt. Start a browser with 'start',
then navigate and act on elements one command at a time:

  start
  navigate https://example.com 2
  send_keys name q "go-rod" ENTER
  click xpath "//a[text()='Sign in']"
  save

Type 'help' for every command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newConsole(a, cmd.OutOrStdout())
			return c.Run(cmd.Context(), cmd.InOrStdin())
		},
	}
	f := cmd.Flags()
	f.Bool("headless", false, "Run the browser without a window")
	f.String("proxy", "", "Proxy server, host:port")
	f.String("user-agent", "", "Custom user agent")
	f.Bool("stealth", false, "Open the page with stealth evasions")
	f.String("profile", "", "Chrome/Chromium profile directory for authenticated sessions (close browser first)")
	f.Duration("timeout", 0, "Element wait bound (default from config, 10s)")
	f.String("target", "", "Script language for 'code' and 'save': go or python")
	f.String("dir", "", "Directory for saved logs, scripts and screenshots")
	f.String("provider", "", "AI provider for 'suggest': claude, openai")
	f.String("model", "", "Specific model override for 'suggest'")
	return cmd
}

// pageScanner is implemented by the rod browser
type pageScanner interface {
	Scan(ctx context.Context) (*browser.PageMap, error)
}

type command struct {
	name  string
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

// console is the interactive front end over one session
type console struct {
	app     *app
	session *session.Session
	out     io.Writer
	logger  *zap.Logger
	now     func() time.Time

	newProvider func(ai.Options) (ai.Provider, error)
	suggested   []action.Request

	commands []command
	byName   map[string]command
}

func newConsole(a *app, out io.Writer) *console {
	c := &console{
		app:         a,
		session:     a.newSession(),
		out:         out,
		logger:      a.logger.Named("console"),
		now:         a.now,
		newProvider: ai.NewProvider,
	}

	c.commands = []command{
		{"start", "", "Launch the browser", c.start},
		{"stop", "", "Quit the browser (history is kept)", c.stop},
		{"navigate", actionUsage[action.Navigate], "Load a URL, then wait for the page to settle", c.navigate},
	}
	for _, kind := range action.Kinds {
		if kind == action.Navigate {
			continue
		}
		c.commands = append(c.commands, command{string(kind), actionUsage[kind], "Perform " + string(kind), func(ctx context.Context, args []string) error {
			return c.act(ctx, kind, args)
		}})
	}
	c.commands = append(c.commands,
		command{"history", "", "List recorded actions", c.history},
		command{"clear", "", "Discard recorded actions and screenshots", c.clear},
		command{"record", "[on|off]", "Show or switch recording of successful actions", c.record},
		command{"code", "[go|python]", "Print the script generated from the recorded actions", c.code},
		command{"save", "[dir]", "Write the recorded actions as JSON plus the generated script", c.save},
		command{"replay", "<actions.json> [keep-going]", "Execute a saved action log in this session", c.replay},
		command{"shots", "[dir]", "Count screenshots, or write them as PNG files", c.shots},
		command{"gif", "<file.gif>", "Render the screenshots as an animated GIF", c.gif},
		command{"scan", "", "List the interactive elements of the current page", c.scan},
		command{"suggest", "<goal...>", "Ask the AI provider for the next steps toward a goal", c.suggest},
		command{"accept", "[n]", "Execute suggestion n, or all suggestions in order", c.accept},
		command{"help", "", "Show this help", c.help},
		command{"quit", "", "Stop the browser and leave", func(context.Context, []string) error { return errQuit }},
	)

	c.byName = make(map[string]command, len(c.commands))
	for _, cmd := range c.commands {
		c.byName[cmd.name] = cmd
	}
	c.byName["nav"] = c.byName["navigate"]
	c.byName["exit"] = c.byName["quit"]
	return c
}

// Run reads commands until quit, end of input or ctx is done. The browser
// is always stopped on the way out.
func (c *console) Run(ctx context.Context, in io.Reader) error {
	defer c.shutdown()

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	fmt.Fprintln(c.out, "stepforge console. Type 'help' for commands.")
	for {
		fmt.Fprint(c.out, prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				return nil
			}
			if c.Exec(ctx, line) {
				return nil
			}
		}
	}
}

// Exec runs one console line and reports whether the console should exit.
// Failures are printed; none of them end the console.
func (c *console) Exec(ctx context.Context, line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		c.fail(fmt.Errorf("%w: %v", action.ErrInvalidInput, err))
		return false
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "#") {
		return false
	}

	name := strings.ToLower(args[0])
	cmd, ok := c.byName[name]
	if !ok {
		fmt.Fprintf(c.out, "✗ Unknown command %q. Type 'help' for commands.\n", args[0])
		return false
	}
	err = cmd.run(ctx, args[1:])
	if errors.Is(err, errQuit) {
		return true
	}
	if err != nil {
		c.fail(err)
	}
	return false
}

func (c *console) shutdown() {
	if c.session.Running() {
		if err := c.session.Stop(); err != nil {
			c.logger.Warn("Failed to stop session.", zap.Error(err))
		}
	}
}

// fail prints err phrased by its category
func (c *console) fail(err error) {
	var msg string
	switch {
	case errors.Is(err, session.ErrAlreadyRunning):
		msg = "A browser is already running."
	case errors.Is(err, action.ErrSessionStart):
		msg = fmt.Sprintf("Could not start the browser: %v", err)
	case errors.Is(err, action.ErrSessionUnavailable) && !c.session.Running():
		msg = "No active browser session. Run 'start' first."
	case errors.Is(err, action.ErrSessionUnavailable):
		msg = fmt.Sprintf("Browser session lost: %v. Run 'stop' then 'start'.", err)
	case errors.Is(err, action.ErrElementNotFound):
		msg = fmt.Sprintf("Element not found within %s: %v", c.app.cfg.Executor.Timeout, err)
	case errors.Is(err, action.ErrInvalidInput), errors.Is(err, action.ErrInvalidParameters):
		msg = err.Error()
	case errors.Is(err, action.ErrUnsupported):
		msg = fmt.Sprintf("Not supported: %v", err)
	case errors.Is(err, action.ErrExecution):
		msg = fmt.Sprintf("Action failed: %v", err)
	default:
		msg = fmt.Sprintf("Error: %v", err)
	}
	fmt.Fprintln(c.out, "✗ "+msg)
}

func noArgs(name string, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %s takes no arguments", action.ErrInvalidInput, name)
	}
	return nil
}

// -- session --

func (c *console) start(ctx context.Context, args []string) error {
	if err := noArgs("start", args); err != nil {
		return err
	}
	fmt.Fprint(c.out, "→ Starting browser... ")
	if err := c.session.Start(ctx); err != nil {
		fmt.Fprintln(c.out, "failed")
		return err
	}
	fmt.Fprintln(c.out, "done")
	return nil
}

func (c *console) stop(_ context.Context, args []string) error {
	if err := noArgs("stop", args); err != nil {
		return err
	}
	if err := c.session.Stop(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "✓ Browser stopped (%d recorded actions kept)\n", len(c.session.History()))
	return nil
}

// -- actions --

func (c *console) navigate(ctx context.Context, args []string) error {
	req, err := parseNavigate(args, c.app.cfg.Executor.NavigateWait)
	if err != nil {
		return err
	}
	return c.perform(ctx, req)
}

func (c *console) act(ctx context.Context, kind action.Kind, args []string) error {
	req, err := parseAction(kind, args)
	if err != nil {
		return err
	}
	return c.perform(ctx, req)
}

func (c *console) perform(ctx context.Context, req action.Request) error {
	step, err := c.session.Execute(ctx, req)
	if err != nil {
		return err
	}
	c.printStep(step)
	return nil
}

func (c *console) printStep(step session.Step) {
	a := step.Action
	switch {
	case a.Kind == action.GetAttribute && step.Outcome.Absent:
		fmt.Fprintf(c.out, "✓ Attribute %q is not set\n", a.Params.Attribute)
	case a.Kind == action.GetText || a.Kind == action.GetAttribute || a.Kind == action.SendKeys:
		fmt.Fprintf(c.out, "✓ %q\n", step.Outcome.Result)
	default:
		fmt.Fprintf(c.out, "✓ %s\n", step.Outcome.Result)
	}
	if !step.Recorded {
		fmt.Fprintln(c.out, "  (not recorded: recording is off)")
	}
}

// -- history --

func (c *console) history(_ context.Context, args []string) error {
	if err := noArgs("history", args); err != nil {
		return err
	}
	actions := c.session.History()
	if len(actions) == 0 {
		fmt.Fprintln(c.out, "No recorded actions.")
		return nil
	}
	for i, a := range actions {
		fmt.Fprintf(c.out, "  [%d] %s %s\n", i+1, a.Timestamp, describeAction(a))
	}
	return nil
}

func (c *console) clear(_ context.Context, args []string) error {
	if err := noArgs("clear", args); err != nil {
		return err
	}
	c.session.ClearHistory()
	fmt.Fprintln(c.out, "✓ History cleared")
	return nil
}

func (c *console) record(_ context.Context, args []string) error {
	switch {
	case len(args) == 0:
	case len(args) == 1 && strings.EqualFold(args[0], "on"):
		c.session.SetRecording(true)
	case len(args) == 1 && strings.EqualFold(args[0], "off"):
		c.session.SetRecording(false)
	default:
		return fmt.Errorf("%w: usage: record [on|off]", action.ErrInvalidInput)
	}
	state := "off"
	if c.session.Recording() {
		state = "on"
	}
	fmt.Fprintf(c.out, "Recording is %s\n", state)
	return nil
}

func (c *console) generate(target string) (*codegen.Script, error) {
	opts, err := c.app.codegenOptions(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", action.ErrInvalidInput, err)
	}
	script, err := codegen.Generate(c.session.History(), opts)
	if err != nil {
		return nil, err
	}
	for _, s := range script.Skipped {
		fmt.Fprintf(c.out, "⚠ step %d (%s) not in script: %s\n", s.Index, s.Kind, s.Reason)
	}
	return script, nil
}

func (c *console) code(_ context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: usage: code [go|python]", action.ErrInvalidInput)
	}
	target := ""
	if len(args) == 1 {
		target = strings.ToLower(args[0])
	}
	script, err := c.generate(target)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, script.Source)
	return nil
}

func (c *console) save(_ context.Context, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: usage: save [dir]", action.ErrInvalidInput)
	}
	dir := c.app.cfg.Output.Dir
	if len(args) == 1 {
		dir = args[0]
	}
	actions := c.session.History()
	if len(actions) == 0 {
		fmt.Fprintln(c.out, "Nothing to save: no recorded actions.")
		return nil
	}

	logPath, err := history.WriteFile(dir, actions, c.now())
	if err != nil {
		return fmt.Errorf("saving action log: %w", err)
	}
	script, err := c.generate("")
	if err != nil {
		return err
	}
	scriptPath := strings.TrimSuffix(logPath, filepath.Ext(logPath)) + script.Target.Ext()
	if err := os.WriteFile(scriptPath, []byte(script.Source), 0o644); err != nil {
		return fmt.Errorf("saving script: %w", err)
	}
	fmt.Fprintf(c.out, "✓ Saved %d actions to %s\n", len(actions), logPath)
	fmt.Fprintf(c.out, "✓ Saved %s script to %s\n", script.Target, scriptPath)
	return nil
}

func (c *console) replay(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 2 || (len(args) == 2 && args[1] != "keep-going") {
		return fmt.Errorf("%w: usage: replay <actions.json> [keep-going]", action.ErrInvalidInput)
	}
	actions, err := history.ReadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "→ Replaying %d actions from %s\n", len(actions), args[0])
	report, err := c.session.Replay(ctx, actions, len(args) == 2)
	printReplay(c.out, report)
	return err
}

func printReplay(w io.Writer, report []session.ReplayStep) {
	for _, r := range report {
		if r.Err != nil {
			fmt.Fprintf(w, "  [%d] ✗ %s: %v\n", r.Index, r.Request, r.Err)
			continue
		}
		fmt.Fprintf(w, "  [%d] ✓ %s\n", r.Index, r.Request)
	}
}

// -- screenshots --

func (c *console) shots(_ context.Context, args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintf(c.out, "%d screenshots captured\n", len(c.session.Shots()))
		return nil
	case 1:
		paths, err := c.session.WriteShots(args[0], "shot")
		if err != nil {
			return fmt.Errorf("saving screenshots: %w", err)
		}
		fmt.Fprintf(c.out, "✓ Saved %d screenshots to %s\n", len(paths), args[0])
		return nil
	default:
		return fmt.Errorf("%w: usage: shots [dir]", action.ErrInvalidInput)
	}
}

func (c *console) gif(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: gif <file.gif>", action.ErrInvalidInput)
	}
	shots := c.session.Shots()
	fmt.Fprintf(c.out, "→ Generating GIF (%d frames)... ", len(shots))
	size, err := screenshot.WriteGIFFile(args[0], shots, c.app.gifOptions())
	if err != nil {
		fmt.Fprintln(c.out, "failed")
		return err
	}
	fmt.Fprintln(c.out, "done")
	fmt.Fprintf(c.out, "✓ Saved to %s (%.1f MB)\n", args[0], float64(size)/(1024*1024))
	return nil
}

// -- page scan and suggestions --

func (c *console) pageMap(ctx context.Context) (*browser.PageMap, error) {
	b := c.session.Browser()
	if b == nil {
		return nil, fmt.Errorf("%w: no active browser session", action.ErrSessionUnavailable)
	}
	s, ok := b.(pageScanner)
	if !ok {
		return nil, fmt.Errorf("%w: this browser cannot scan pages", action.ErrUnsupported)
	}
	return s.Scan(ctx)
}

func (c *console) scan(ctx context.Context, args []string) error {
	if err := noArgs("scan", args); err != nil {
		return err
	}
	pm, err := c.pageMap(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s (%s), %d interactive elements\n", pm.Title, pm.URL, len(pm.Elements))
	for i, el := range pm.Elements {
		label := el.Text
		if label == "" {
			label = el.Placeholder
		}
		fmt.Fprintf(c.out, "  [%d] %-8s %s %q\n", i+1, el.Type, joinArgs(string(el.Locator.Strategy), el.Locator.Value), label)
	}
	return nil
}

func (c *console) suggest(ctx context.Context, args []string) error {
	goal := strings.TrimSpace(strings.Join(args, " "))
	if goal == "" {
		return fmt.Errorf("%w: usage: suggest <goal...>", action.ErrInvalidInput)
	}
	pm, err := c.pageMap(ctx)
	if err != nil {
		return err
	}
	opts := c.app.aiOptions()
	provider, err := c.newProvider(opts)
	if err != nil {
		return fmt.Errorf("AI provider init failed: %w", err)
	}

	fmt.Fprintf(c.out, "→ Asking %s for steps... ", opts.Provider)
	reqs, err := provider.Suggest(ctx, pm, goal, c.session.History())
	if err != nil {
		fmt.Fprintln(c.out, "failed")
		return err
	}
	fmt.Fprintf(c.out, "done (%d steps)\n", len(reqs))
	c.suggested = reqs
	for i, req := range reqs {
		fmt.Fprintf(c.out, "  [%d] %s\n", i+1, formatCommand(req))
	}
	if len(reqs) > 0 {
		fmt.Fprintln(c.out, "Run 'accept' to execute them all, or 'accept <n>' for one.")
	}
	return nil
}

func (c *console) accept(ctx context.Context, args []string) error {
	if len(c.suggested) == 0 {
		return fmt.Errorf("%w: no suggestions; run 'suggest <goal>' first", action.ErrInvalidInput)
	}
	switch len(args) {
	case 0:
		pending := c.suggested
		c.suggested = nil
		for i, req := range pending {
			fmt.Fprintf(c.out, "→ [%d] %s\n", i+1, formatCommand(req))
			if err := c.perform(ctx, req); err != nil {
				return err
			}
		}
		return nil
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > len(c.suggested) {
			return fmt.Errorf("%w: suggestion number must be 1 to %d", action.ErrInvalidInput, len(c.suggested))
		}
		return c.perform(ctx, c.suggested[n-1])
	default:
		return fmt.Errorf("%w: usage: accept [n]", action.ErrInvalidInput)
	}
}

func (c *console) help(_ context.Context, _ []string) error {
	fmt.Fprintln(c.out, "Commands:")
	for _, cmd := range c.commands {
		fmt.Fprintf(c.out, "  %-48s %s\n", strings.TrimSpace(cmd.name+" "+cmd.usage), cmd.help)
	}
	fmt.Fprintf(c.out, "\nStrategies: %s\n", joinStrategies())
	keys := make([]string, len(action.SpecialKeys))
	for i, k := range action.SpecialKeys {
		keys[i] = string(k)
	}
	fmt.Fprintf(c.out, "Keys: %s\n", strings.Join(keys, " "))
	fmt.Fprintln(c.out, `Quote arguments with spaces: click xpath "//a[text()='Sign in']"`)
	return nil
}

func joinStrategies() string {
	names := make([]string, len(action.Strategies))
	for i, s := range action.Strategies {
		names[i] = string(s)
	}
	return strings.Join(names, " ")
}
