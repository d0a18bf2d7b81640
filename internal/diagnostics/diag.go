// Package diagnostics turns errors and events into structured records that
// are logged and pushed to preview clients.
package diagnostics

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-gradient/internal/gpu/glcore"
	"github.com/coreman2200/funtimes-gradient/internal/pipeline"
	"github.com/coreman2200/funtimes-gradient/internal/theme"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// FromError classifies err. Unknown errors become RUNTIME.ERROR.
func FromError(err error) Diagnostic {
	var (
		ie *pipeline.InitError
		ce *pipeline.ShaderCompileError
		le *pipeline.ShaderLinkError
	)
	switch {
	case errors.Is(err, pipeline.ErrMissingContainer):
		return Diagnostic{
			Severity:       Err,
			Code:           "SURFACE.MISSING",
			Summary:        "No rendering surface; background is inert",
			Detail:         err.Error(),
			SuggestedFixes: []string{"Select a surface with -surface", "Check the window/terminal is available"},
		}
	case errors.Is(err, glcore.ErrUnsupported):
		return Diagnostic{
			Severity:       Err,
			Code:           "GPU.UNSUPPORTED",
			Summary:        "Binary built without OpenGL support",
			Detail:         err.Error(),
			SuggestedFixes: []string{"Rebuild with -tags gl", "Use the term, preview or led surface"},
		}
	case errors.As(err, &ie):
		return Diagnostic{
			Severity:     Err,
			Code:         "GPU.INIT",
			Summary:      "Graphics context unavailable",
			Detail:       err.Error(),
			LikelyCauses: []string{"No GPU or driver", "Headless session without a display", "SPI device busy or missing"},
		}
	case errors.As(err, &ce):
		return Diagnostic{
			Severity:     Err,
			Code:         "SHADER.COMPILE",
			Summary:      "Shader failed to compile",
			Detail:       ce.Log,
			LikelyCauses: []string{"GLSL version not supported by the driver"},
			Evidence:     map[string]any{"stage": ce.Stage.String()},
		}
	case errors.As(err, &le):
		return Diagnostic{
			Severity: Err,
			Code:     "SHADER.LINK",
			Summary:  "Shader program failed to link",
			Detail:   le.Log,
		}
	case errors.Is(err, theme.ErrModeMismatch):
		return Diagnostic{
			Severity:       Warn,
			Code:           "THEME.MODE",
			Summary:        "Theme input does not match the controller mode",
			Detail:         err.Error(),
			SuggestedFixes: []string{"Use theme requests in discrete mode and scroll in scroll mode"},
		}
	case err == nil:
		return Diagnostic{Severity: Info, Code: "OK", Summary: "No error"}
	}
	return Diagnostic{Severity: Err, Code: "RUNTIME.ERROR", Summary: "Unexpected error", Detail: err.Error()}
}

// Log writes d at a level matching its severity.
func Log(lg *zerolog.Logger, d Diagnostic) {
	var ev *zerolog.Event
	switch d.Severity {
	case Err:
		ev = lg.Error()
	case Warn:
		ev = lg.Warn()
	default:
		ev = lg.Info()
	}
	ev.Str("code", d.Code)
	if d.Detail != "" {
		ev.Str("detail", d.Detail)
	}
	ev.Msg(d.Summary)
}
