package goadmin

import (
	"context"
	"errors"
	"fmt"

	dashboardpkg "github.com/goliatone/go-feedback-dashboard/pkg/dashboard"
)

// MenuBuilder ensures dashboard entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures dashboard link metadata.
type MenuItem struct {
	Code     string
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the feedback dashboard service into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuCode        string
	RoutePrefix     string
	MenuBuilder     MenuBuilder
	Service         *dashboardpkg.Service
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed dashboard menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("goadmin: dashboard service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.RoutePrefix == "" {
		cfg.RoutePrefix = "/admin/feedback"
	}
	return &Admin{cfg: cfg}, nil
}

// Dashboard exposes the configured dashboard service when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap seeds one admin menu entry per dashboard page the viewer may open.
func (a *Admin) Bootstrap(ctx context.Context, viewer dashboardpkg.ViewerContext) error {
	if !a.cfg.EnableDashboard || a.cfg.MenuBuilder == nil {
		return nil
	}
	for _, item := range a.cfg.Service.Menu(viewer) {
		entry := MenuItem{
			Code:     item.Code,
			Label:    item.Label,
			Route:    joinRoute(a.cfg.RoutePrefix, item.Route),
			Icon:     item.Icon,
			Position: item.Position,
		}
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, entry); err != nil {
			return fmt.Errorf("goadmin: ensure menu item %s: %w", item.Code, err)
		}
	}
	return nil
}

func joinRoute(prefix, route string) string {
	if route == "" || route == "/" {
		return prefix
	}
	return prefix + route
}
