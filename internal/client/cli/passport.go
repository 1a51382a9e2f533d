package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/airpass/internal/client/models"
)

// LogExposure prompts for one exposure. Blank pollutant readings let the
// server substitute its defaults.
func (a *App) LogExposure(ctx context.Context) error {
	req, err := a.promptExposure()
	if err != nil {
		fmt.Fprintln(a.out, "Invalid input:", err)
		return err
	}

	res, err := a.passport.LogExposure(ctx, *req)
	if err != nil {
		return a.fail(ctx, "Log failed", err)
	}
	if res.Queued {
		a.setMode(ctx, ModeOffline)
		fmt.Fprintf(a.out, "Offline: exposure saved locally (%d pending). It will be sent on 'sync' or when the server is back.\n", res.Pending)
		return nil
	}
	fmt.Fprintln(a.out, renderSummary(res.Summary))
	return nil
}

func (a *App) promptExposure() (*models.ExposureRequest, error) {
	name, err := getSimpleText(a.reader, "Location name", a.out)
	if err != nil {
		return nil, err
	}
	lat, err := GetFloat(a.reader, "Latitude", a.out, false)
	if err != nil {
		return nil, err
	}
	lon, err := GetFloat(a.reader, "Longitude", a.out, false)
	if err != nil {
		return nil, err
	}
	req := &models.ExposureRequest{Lat: *lat, Lon: *lon, LocationName: name}
	if req.PM25, err = GetFloat(a.reader, "PM2.5 µg/m³ (empty for default)", a.out, true); err != nil {
		return nil, err
	}
	if req.NO2, err = GetFloat(a.reader, "NO2 ppb (empty for default)", a.out, true); err != nil {
		return nil, err
	}
	if req.CO, err = GetFloat(a.reader, "CO ppm (empty for default)", a.out, true); err != nil {
		return nil, err
	}
	if req.Mode, err = getSimpleText(a.reader, "Mode (walk, bike, transit, car; optional)", a.out); err != nil {
		return nil, err
	}
	return req, nil
}

func (a *App) Passport(ctx context.Context, args []string) error {
	limit := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintln(a.out, "Usage: passport [limit]")
			return fmt.Errorf("bad limit %q", args[0])
		}
		limit = n
	}

	view, err := a.passport.Passport(ctx, limit)
	if err != nil {
		return a.fail(ctx, "Passport unavailable", err)
	}
	fmt.Fprintln(a.out, renderPassport(view))

	if n, err := a.passport.PendingCount(ctx); err == nil && n > 0 {
		fmt.Fprintf(a.out, "%d exposure(s) waiting to sync\n", n)
	}
	return nil
}

func (a *App) Insights(ctx context.Context) error {
	view, err := a.passport.Insights(ctx)
	if err != nil {
		return a.fail(ctx, "Insights unavailable", err)
	}
	if view == nil {
		fmt.Fprintln(a.out, "No passport yet. Use 'log' to record your first exposure.")
		return nil
	}
	fmt.Fprintln(a.out, renderInsights(view))
	return nil
}

// Sync replays exposures recorded while offline.
func (a *App) Sync(ctx context.Context) error {
	res, err := a.passport.Sync(ctx)
	if err != nil {
		return a.fail(ctx, "Sync failed", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Synced %d exposure(s)", res.Sent)
	if res.Dropped > 0 {
		fmt.Fprintf(&b, ", dropped %d rejected", res.Dropped)
	}
	if res.Remaining > 0 {
		a.setMode(ctx, ModeOffline)
		fmt.Fprintf(&b, ", %d still pending (server unreachable)", res.Remaining)
	}
	fmt.Fprintln(a.out, b.String())
	if res.Last != nil {
		fmt.Fprintln(a.out, renderSummary(res.Last))
	}
	return nil
}
