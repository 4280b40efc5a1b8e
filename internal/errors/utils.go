package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	CategoryDatabase   = "database"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryUpstream   = "upstream"
	CategoryUnknown    = "unknown"
)

// what production clients see for each category
var publicMessages = map[string]string{
	CategoryDatabase:   "database operation failed",
	CategoryNetwork:    "connection error occurred",
	CategoryValidation: "validation failed",
	CategoryAuth:       "permission denied",
	CategoryNotFound:   "resource not found",
	CategoryTimeout:    "request timed out",
	CategoryUpstream:   "an upstream service failed",
	CategoryUnknown:    "an error occurred",
}

// substring rules for errors that carry no typed sentinel, checked in order
var messageRules = []struct {
	category string
	needles  []string
}{
	{CategoryTimeout, []string{"timeout", "deadline"}},
	{CategoryNotFound, []string{"not found", "no rows", "nosuchkey"}},
	{CategoryDatabase, []string{"database", "sql", "postgres", "pgx"}},
	{CategoryUpstream, []string{"openrouter", "creem", "gateway", "circuit breaker"}},
	{CategoryNetwork, []string{"connection", "network", "dial"}},
	{CategoryValidation, []string{"validation", "binding", "invalid", "required"}},
	{CategoryAuth, []string{"unauthorized", "forbidden", "permission", "signature"}},
}

func categorize(err error) string {
	var pgErr *pgconn.PgError

	switch {
	case errors.As(err, &pgErr):
		return CategoryDatabase
	case errors.Is(err, pgx.ErrNoRows):
		return CategoryNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CategoryTimeout
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(msg, needle) {
				return rule.category
			}
		}
	}

	return CategoryUnknown
}

// sorts an error into a category. outside production the raw message is kept
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{category: CategoryUnknown}
	}

	category := categorize(err)
	if os.Getenv("ENVIRONMENT") != "production" {
		return ErrorInfo{category: category, sanitized: err.Error()}
	}

	return ErrorInfo{category: category, sanitized: publicMessages[category]}
}
