package llm

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"google.golang.org/genai"
)

var statusCodeRe = regexp.MustCompile(`(?:status(?:\s+code)?[:=\s]+)(\d{3})`)

type FailureClass int

const (
	FailureNone FailureClass = iota
	FailureTimeout
	FailureRateLimit
	FailureServer
	FailureClient
	FailureEmpty
)

func (c FailureClass) String() string {
	switch c {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureRateLimit:
		return "rate_limit"
	case FailureServer:
		return "server"
	case FailureClient:
		return "client"
	case FailureEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Retryable reports whether another attempt may succeed.
func (c FailureClass) Retryable() bool {
	switch c {
	case FailureTimeout, FailureRateLimit, FailureServer, FailureEmpty:
		return true
	default:
		return false
	}
}

// ClassifyError maps a transport or model error to a failure class.
// Unrecognized errors are treated as server failures so they get retried.
func ClassifyError(err error) FailureClass {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, ErrEmptyResponse) {
		return FailureEmpty
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FailureTimeout
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code != 0 {
		return classifyStatus(apiErr.Code)
	}
	var antErr *anthropic.Error
	if errors.As(err, &antErr) && antErr.StatusCode != 0 {
		return classifyStatus(antErr.StatusCode)
	}

	msg := strings.ToLower(err.Error())
	if m := statusCodeRe.FindStringSubmatch(msg); len(m) == 2 {
		switch {
		case m[1] == "429":
			return FailureRateLimit
		case strings.HasPrefix(m[1], "5"):
			return FailureServer
		case strings.HasPrefix(m[1], "4"):
			return FailureClient
		}
	}
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "resource_exhausted"):
		return FailureRateLimit
	case strings.Contains(msg, "server error"):
		return FailureServer
	default:
		return FailureServer
	}
}

func classifyStatus(code int) FailureClass {
	switch {
	case code == 429:
		return FailureRateLimit
	case code == 408:
		return FailureTimeout
	case code >= 500:
		return FailureServer
	case code >= 400:
		return FailureClient
	default:
		return FailureServer
	}
}
