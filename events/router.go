package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type Handler func(ctx context.Context, ev Event) error

type route struct {
	pattern string
	handler Handler
}

// Router dispatches events to handlers registered for AMQP topic patterns
// ("*" matches one word, "#" matches zero or more).
type Router struct {
	routes []route
}

func NewRouter() *Router {
	return &Router{}
}

func (r *Router) Handle(pattern string, h Handler) {
	r.routes = append(r.routes, route{pattern: pattern, handler: h})
}

// Patterns returns the registered patterns, used as queue binding keys.
func (r *Router) Patterns() []string {
	out := make([]string, 0, len(r.routes))
	seen := map[string]bool{}
	for _, rt := range r.routes {
		if !seen[rt.pattern] {
			seen[rt.pattern] = true
			out = append(out, rt.pattern)
		}
	}
	return out
}

func (r *Router) Dispatch(ctx context.Context, routingKey string, body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("decoding event %s: %w", routingKey, err)
	}
	if ev.Type == "" {
		ev.Type = routingKey
	}

	var errs []error
	for _, rt := range r.routes {
		if !matchTopic(rt.pattern, routingKey) {
			continue
		}
		if err := rt.handler(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s handler: %w", rt.pattern, err))
		}
	}
	return errors.Join(errs...)
}

func matchTopic(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
