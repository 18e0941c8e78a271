package main

import (
	"context"
	"time"

	"github.com/v0xg/stepforge/internal/ai"
	"github.com/v0xg/stepforge/internal/browser"
	"github.com/v0xg/stepforge/internal/codegen"
	"github.com/v0xg/stepforge/internal/executor"
	"github.com/v0xg/stepforge/internal/screenshot"
	"github.com/v0xg/stepforge/internal/session"
)

func (a *app) now() time.Time {
	if a.clock != nil {
		return a.clock()
	}
	return time.Now()
}

func (a *app) browserOptions() browser.Options {
	b := a.cfg.Browser
	return browser.Options{
		Headless:   b.Headless,
		Proxy:      b.Proxy,
		UserAgent:  b.UserAgent,
		Stealth:    b.Stealth,
		Width:      b.Width,
		Height:     b.Height,
		ProfileDir: b.ProfileDir,
		Bin:        b.Bin,
	}
}

func (a *app) launcher() session.Launcher {
	if a.launch != nil {
		return a.launch
	}
	opts := a.browserOptions()
	return func(ctx context.Context) (session.Browser, error) {
		b, err := browser.Launch(ctx, a.logger, opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

func (a *app) newSession() *session.Session {
	exec := executor.New(a.logger, executor.Options{Timeout: a.cfg.Executor.Timeout})
	return session.New(a.logger, a.launcher(), exec, session.Options{
		Recording:   a.cfg.Recording.Enabled,
		Screenshots: a.cfg.Screenshots.Enabled,
		Clock:       a.clock,
	})
}

// codegenOptions uses the configured target unless target is set
func (a *app) codegenOptions(target string) (codegen.Options, error) {
	if target == "" {
		target = a.cfg.Output.Target
	}
	t, err := codegen.ParseTarget(target)
	if err != nil {
		return codegen.Options{}, err
	}
	return codegen.Options{
		Target:   t,
		Headless: a.cfg.Browser.Headless,
		Timeout:  a.cfg.Executor.Timeout,
	}, nil
}

func (a *app) gifOptions() screenshot.GIFOptions {
	opts := screenshot.DefaultGIFOptions
	opts.FPS = a.cfg.Screenshots.GIFFPS
	opts.MaxWidth = uint(a.cfg.Screenshots.GIFWidth)
	return opts
}

func (a *app) aiOptions() ai.Options {
	c := a.cfg.AI
	return ai.Options{
		Provider:  c.Provider,
		Model:     c.Model,
		APIKey:    c.APIKey,
		BaseURL:   c.BaseURL,
		MaxTokens: c.MaxTokens,
	}
}
