package config

import (
	"fmt"
	"strings"
)

// Profile selects output layout and whether minification runs.
type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileProd Profile = "prod"
)

// Minify reports whether outputs of this profile are minified.
func (p Profile) Minify() bool { return p == ProfileProd }

// ParseProfile converts a raw string into a Profile.
func ParseProfile(raw string) (Profile, error) {
	switch Profile(strings.ToLower(strings.TrimSpace(raw))) {
	case ProfileDev:
		return ProfileDev, nil
	case ProfileProd:
		return ProfileProd, nil
	default:
		return "", fmt.Errorf("unknown profile %q (expected dev or prod)", raw)
	}
}

// Environment is the deployment label surfaced in rendered templates.
type Environment string

const (
	EnvDev     Environment = "DEV"
	EnvQA      Environment = "QA"
	EnvStaging Environment = "STAGING"
	EnvProd    Environment = "PROD"
)

// Environments lists every supported environment label.
func Environments() []Environment {
	return []Environment{EnvDev, EnvQA, EnvStaging, EnvProd}
}

// ParseEnvironment converts a raw string (any case) into an Environment.
func ParseEnvironment(raw string) (Environment, error) {
	env := Environment(strings.ToUpper(strings.TrimSpace(raw)))
	for _, e := range Environments() {
		if e == env {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown environment %q (expected one of DEV, QA, STAGING, PROD)", raw)
}

// StyleCompiler selects how stylesheets are compiled.
type StyleCompiler string

const (
	StyleCompilerSass StyleCompiler = "sass"
	StyleCompilerNone StyleCompiler = "none"
)

// NormalizeStyleCompiler maps raw input onto a known compiler, defaulting to sass.
func NormalizeStyleCompiler(raw string) StyleCompiler {
	switch StyleCompiler(strings.ToLower(strings.TrimSpace(raw))) {
	case StyleCompilerNone:
		return StyleCompilerNone
	default:
		return StyleCompilerSass
	}
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

func NormalizeLogLevel(raw string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn, "warning":
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

func NormalizeLogFormat(raw string) LogFormat {
	if LogFormat(strings.ToLower(strings.TrimSpace(raw))) == LogFormatJSON {
		return LogFormatJSON
	}
	return LogFormatText
}
