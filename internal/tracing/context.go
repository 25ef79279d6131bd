package tracing

import (
	"context"

	"github.com/google/uuid"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// TraceIDKey is the context key for trace ID
	TraceIDKey ContextKey = "trace_id"
	// UpdateIDKey is the context key for the inbound chat update ID
	UpdateIDKey ContextKey = "update_id"
	// ChatIDKey is the context key for the chat the update came from
	ChatIDKey ContextKey = "chat_id"
	// UserIDKey is the context key for the acting user
	UserIDKey ContextKey = "user_id"
)

// TraceContext holds tracing information
type TraceContext struct {
	TraceID  string
	UpdateID string
	ChatID   string
	UserID   string
}

// NewTraceID generates a new trace ID
func NewTraceID() string {
	return uuid.New().String()
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// WithUpdateID adds an update ID to the context
func WithUpdateID(ctx context.Context, updateID string) context.Context {
	return context.WithValue(ctx, UpdateIDKey, updateID)
}

// WithChatID adds a chat ID to the context
func WithChatID(ctx context.Context, chatID string) context.Context {
	return context.WithValue(ctx, ChatIDKey, chatID)
}

// WithUserID adds a user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func stringValue(ctx context.Context, key ContextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// GetTraceID retrieves the trace ID from the context
func GetTraceID(ctx context.Context) string {
	return stringValue(ctx, TraceIDKey)
}

// GetUpdateID retrieves the update ID from the context
func GetUpdateID(ctx context.Context) string {
	return stringValue(ctx, UpdateIDKey)
}

// GetChatID retrieves the chat ID from the context
func GetChatID(ctx context.Context) string {
	return stringValue(ctx, ChatIDKey)
}

// GetUserID retrieves the user ID from the context
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, UserIDKey)
}

// FromContext extracts all tracing information from the context
func FromContext(ctx context.Context) *TraceContext {
	return &TraceContext{
		TraceID:  GetTraceID(ctx),
		UpdateID: GetUpdateID(ctx),
		ChatID:   GetChatID(ctx),
		UserID:   GetUserID(ctx),
	}
}

// NewContext creates a new context with tracing information
func NewContext(ctx context.Context, tc *TraceContext) context.Context {
	if tc.TraceID != "" {
		ctx = WithTraceID(ctx, tc.TraceID)
	}
	if tc.UpdateID != "" {
		ctx = WithUpdateID(ctx, tc.UpdateID)
	}
	if tc.ChatID != "" {
		ctx = WithChatID(ctx, tc.ChatID)
	}
	if tc.UserID != "" {
		ctx = WithUserID(ctx, tc.UserID)
	}
	return ctx
}

// NewUpdateContext creates a context for one inbound update with a fresh trace ID.
func NewUpdateContext(ctx context.Context, updateID, chatID, userID string) context.Context {
	return NewContext(ctx, &TraceContext{
		TraceID:  NewTraceID(),
		UpdateID: updateID,
		ChatID:   chatID,
		UserID:   userID,
	})
}
