package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/airpass/internal/client/models"
)

// Health shows or edits the health profile:
//
//	health                         show
//	health set                     prompt for every field
//	health conditions a,b [level]  replace conditions (and sensitivity)
//	health delete                  remove the profile
func (a *App) Health(ctx context.Context, args []string) error {
	sub := ""
	if len(args) > 0 {
		sub = args[0]
	}

	switch sub {
	case "":
		hp, err := a.health.Get(ctx)
		if err != nil {
			return a.fail(ctx, "Health profile unavailable", err)
		}
		if hp == nil {
			fmt.Fprintln(a.out, "No health profile. Use 'health set' to create one.")
			return nil
		}
		fmt.Fprintln(a.out, renderHealth(hp))

	case "set":
		in, err := a.promptHealth()
		if err != nil {
			fmt.Fprintln(a.out, "Invalid input:", err)
			return err
		}
		hp, err := a.health.Save(ctx, *in)
		if err != nil {
			return a.fail(ctx, "Save failed", err)
		}
		fmt.Fprintln(a.out, renderHealth(hp))

	case "conditions":
		if len(args) < 2 {
			fmt.Fprintln(a.out, "Usage: health conditions <a,b,...> [sensitivity]")
			return fmt.Errorf("missing conditions")
		}
		sensitivity := ""
		if len(args) > 2 {
			sensitivity = args[2]
		}
		hp, err := a.health.UpdateConditions(ctx, splitList(args[1]), sensitivity)
		if err != nil {
			return a.fail(ctx, "Update failed", err)
		}
		fmt.Fprintln(a.out, renderHealth(hp))

	case "delete":
		if err := a.health.Delete(ctx); err != nil {
			return a.fail(ctx, "Delete failed", err)
		}
		fmt.Fprintln(a.out, "Health profile deleted")

	default:
		fmt.Fprintln(a.out, "Usage: health [set|conditions|delete]")
		return fmt.Errorf("unknown subcommand %q", sub)
	}
	return nil
}

func (a *App) promptHealth() (*models.HealthProfileRequest, error) {
	in := &models.HealthProfileRequest{}

	age, err := getSimpleText(a.reader, "Age (optional)", a.out)
	if err != nil {
		return nil, err
	}
	if age != "" {
		n, err := strconv.Atoi(age)
		if err != nil {
			return nil, fmt.Errorf("%q is not a whole number", age)
		}
		in.Age = &n
	}
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Gender (optional)", &in.Gender},
		{"Activity level: low, moderate, high (optional)", &in.ActivityLevel},
		{"Time outdoors: low, moderate, high (optional)", &in.OutdoorExposure},
		{"Sensitivity: low, normal, high (optional)", &in.Sensitivity},
	} {
		if *f.dst, err = getSimpleText(a.reader, f.prompt, a.out); err != nil {
			return nil, err
		}
	}
	if in.Conditions, err = GetList(a.reader, "Conditions", a.out); err != nil {
		return nil, err
	}
	return in, nil
}
