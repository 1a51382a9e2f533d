package cli

import (
	"context"
	"fmt"
	"strconv"

	sm "github.com/dmitrijs2005/airpass/internal/server/models"
)

// History lists or edits air-quality readings:
//
//	history [limit]          latest readings
//	history summary [days]   per-day averages
//	history add              record a reading
//	history clear            delete every reading
func (a *App) History(ctx context.Context, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "summary":
		days, err := optionalInt(args, 1)
		if err != nil {
			fmt.Fprintln(a.out, "Usage: history summary [days]")
			return err
		}
		list, err := a.history.Summary(ctx, days)
		if err != nil {
			return a.fail(ctx, "Summary unavailable", err)
		}
		fmt.Fprintln(a.out, renderDays(list))

	case "add":
		r, err := a.promptReading()
		if err != nil {
			fmt.Fprintln(a.out, "Invalid input:", err)
			return err
		}
		out, err := a.history.Record(ctx, r)
		if err != nil {
			return a.fail(ctx, "Record failed", err)
		}
		fmt.Fprintf(a.out, "Recorded AQI %d (%s)\n", out.AQI, renderLevel(out.RiskLevel))

	case "clear":
		n, err := a.history.Clear(ctx)
		if err != nil {
			return a.fail(ctx, "Clear failed", err)
		}
		fmt.Fprintf(a.out, "Deleted %d reading(s)\n", n)

	default:
		limit, err := optionalInt(args, 0)
		if err != nil {
			fmt.Fprintln(a.out, "Usage: history [limit|summary [days]|add|clear]")
			return err
		}
		list, err := a.history.List(ctx, limit, "", "")
		if err != nil {
			return a.fail(ctx, "History unavailable", err)
		}
		fmt.Fprintln(a.out, renderReadings(list))
	}
	return nil
}

func (a *App) promptReading() (*sm.AirQualityReading, error) {
	aqi, err := GetFloat(a.reader, "AQI", a.out, false)
	if err != nil {
		return nil, err
	}
	if *aqi != float64(int(*aqi)) {
		return nil, fmt.Errorf("AQI must be a whole number")
	}
	name, err := getSimpleText(a.reader, "Location name", a.out)
	if err != nil {
		return nil, err
	}
	lat, err := GetFloat(a.reader, "Latitude", a.out, false)
	if err != nil {
		return nil, err
	}
	lng, err := GetFloat(a.reader, "Longitude", a.out, false)
	if err != nil {
		return nil, err
	}
	r := &sm.AirQualityReading{AQI: int(*aqi), LocationName: name, Lat: *lat, Lng: *lng}
	if r.PM25, err = GetFloat(a.reader, "PM2.5 (optional)", a.out, true); err != nil {
		return nil, err
	}
	return r, nil
}

// Export creates a CSV export of the history:
//
//	export            create and print a download link
//	export download   create and save the file locally
//	export list       previous exports
func (a *App) Export(ctx context.Context, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "list":
		list, err := a.history.Exports(ctx, 0)
		if err != nil {
			return a.fail(ctx, "Exports unavailable", err)
		}
		if len(list) == 0 {
			fmt.Fprintln(a.out, "No exports yet.")
		}
		for _, e := range list {
			fmt.Fprintln(a.out, renderExport(e))
		}

	case "", "download":
		exp, path, err := a.history.Export(ctx, sub == "download")
		if exp != nil {
			fmt.Fprintln(a.out, renderExport(exp))
		}
		if err != nil {
			return a.fail(ctx, "Export failed", err)
		}
		if path != "" {
			fmt.Fprintln(a.out, "Saved to", path)
		}

	default:
		fmt.Fprintln(a.out, "Usage: export [download|list]")
		return fmt.Errorf("unknown subcommand %q", sub)
	}
	return nil
}

// optionalInt parses args[i] as a positive int, or returns 0 when absent.
func optionalInt(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a positive number", args[i])
	}
	return n, nil
}
