package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	config "github.com/promura/backend/configs"
)

const (
	postTimeout  = 180 * time.Second
	checkTimeout = 30 * time.Second
)

// PosterResult is the structured outcome of an external poster call.
// Subprocess failures of any kind land here; they never propagate as
// errors, so a bad browser session cannot crash a request.
type PosterResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// PosterService is the narrow boundary around the browser-automation CLI
// that does the actual posting. Command, arguments, timeout, and captured
// output are all there is; the tool itself stays external.
type PosterService interface {
	Post(ctx context.Context, text string, files []string, scheduleTime string) *PosterResult
	TestConnection(ctx context.Context) *PosterResult
}

type snarfPoster struct {
	cfg config.Config
}

func NewPosterService(cfg config.Config) PosterService {
	return &snarfPoster{cfg: cfg}
}

// Post hands text and media paths to the automation tool. The caption is
// passed through a temp file because the tool reads text from disk. One
// shot, fixed timeout, no retry; once started there is no cancelling it.
func (p *snarfPoster) Post(ctx context.Context, text string, files []string, scheduleTime string) *PosterResult {
	args := []string{"post", "--username", p.cfg.Snarf.Username}

	if text != "" {
		textFile, err := os.CreateTemp("", "post-*.txt")
		if err != nil {
			return &PosterResult{Message: fmt.Sprintf("post error: %v", err)}
		}
		defer os.Remove(textFile.Name())

		if _, err := textFile.WriteString(text); err != nil {
			textFile.Close()
			return &PosterResult{Message: fmt.Sprintf("post error: %v", err)}
		}
		textFile.Close()
		args = append(args, "-text", textFile.Name())
	}

	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			args = append(args, "-media", file)
		}
	}

	args = append(args, "-browser", p.cfg.Snarf.Browser, "-debug")
	if scheduleTime != "" {
		args = append(args, "-schedule", scheduleTime)
	}

	result := p.run(ctx, postTimeout, args)
	if result.Success {
		result.Message = "Successfully posted"
	}
	return result
}

// TestConnection asks the tool to verify its configured session.
func (p *snarfPoster) TestConnection(ctx context.Context) *PosterResult {
	if p.cfg.Snarf.Username == "" {
		return &PosterResult{Message: "no poster account configured"}
	}

	result := p.run(ctx, checkTimeout, []string{"config", "--username", p.cfg.Snarf.Username})
	if result.Success {
		result.Message = fmt.Sprintf("connected as %s", p.cfg.Snarf.Username)
	}
	return result
}

func (p *snarfPoster) run(ctx context.Context, timeout time.Duration, args []string) *PosterResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Info("invoking external poster", "command", p.cfg.Snarf.Command, "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.cfg.Snarf.Command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return &PosterResult{Message: "post timed out", Detail: stderr.String()}
	}
	if err != nil {
		detail := stderr.String()
		if detail == "" {
			detail = stdout.String()
		}
		slog.Info("external poster failed", "error", err)
		return &PosterResult{Message: fmt.Sprintf("poster failed: %v", err), Detail: detail}
	}

	return &PosterResult{Success: true, Detail: stdout.String()}
}
