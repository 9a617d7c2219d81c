package application

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/coffeescripttech-maker/classroom-cleanliness/internal/domain"
)

// scorerParamBounds lists the numeric parameters each scorer type accepts
// together with their allowed range. Unknown keys are rejected so that typos
// in configuration files do not silently fall back to defaults.
var scorerParamBounds = map[string]map[string][2]float64{
	"floor": {
		"paper_penalty": {0, 10},
		"trash_penalty": {0, 10},
	},
	"furniture": {
		"alignment_weight":      {0, 10},
		"alignment_margin":      {0, 10000},
		"arrangement_weight":    {0, 10},
		"arrangement_min_items": {2, 1000},
		"variance_scale":        {1e-9, 1e12},
		"surface_item_penalty":  {0, 10},
		"surface_item_cap":      {0, 10},
	},
	"trash": {
		"missing_bin_penalty": {0, 10},
		"stray_penalty":       {0, 10},
		"stray_cap":           {0, 10},
		"overflow_penalty":    {0, 10},
		"overflow_cap":        {0, 10},
		"bin_proximity":       {0, 10000},
	},
	"wall": {
		"mark_penalty":       {0, 10},
		"mark_cap":           {0, 10},
		"obstruction_weight": {0, 10},
		"obstruction_cap":    {0, 10},
	},
	"clutter": {
		"bag_penalty":    {0, 10},
		"bottle_penalty": {0, 10},
		"book_penalty":   {0, 10},
		"misc_penalty":   {0, 10},
	},
}

// ValidateScorerParameters validates the parameters for a specific scorer
// type, ensuring every key is known and every value is a number inside the
// allowed range. An empty node is valid and means "use defaults".
func ValidateScorerParameters(scorerType string, params yaml.Node) error {
	bounds, ok := scorerParamBounds[scorerType]
	if !ok {
		return fmt.Errorf("unknown scorer type: %s", scorerType)
	}
	if params.Kind == 0 {
		return nil
	}

	var paramMap map[string]any
	if err := params.Decode(&paramMap); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}

	for key, raw := range paramMap {
		limits, ok := bounds[key]
		if !ok {
			return fmt.Errorf("%s scorer does not accept parameter %q", scorerType, key)
		}
		var v float64
		switch n := raw.(type) {
		case int:
			v = float64(n)
		case float64:
			v = n
		default:
			return fmt.Errorf("%s must be a number", key)
		}
		if v < limits[0] || v > limits[1] {
			return fmt.Errorf("%s must be between %g and %g", key, limits[0], limits[1])
		}
	}
	return nil
}

// RegisterConfigValidators registers domain-specific validation functions
// with the validator instance so they can be referenced in struct tags.
func RegisterConfigValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("period", validatePeriod); err != nil {
		return fmt.Errorf("failed to register period validator: %w", err)
	}
	if err := v.RegisterValidation("category", validateCategory); err != nil {
		return fmt.Errorf("failed to register category validator: %w", err)
	}
	return nil
}

// validatePeriod accepts the names understood by domain.ParsePeriod.
func validatePeriod(fl validator.FieldLevel) bool {
	_, err := domain.ParsePeriod(fl.Field().String())
	return err == nil
}

// validateCategory accepts detection category names other than "unknown".
func validateCategory(fl validator.FieldLevel) bool {
	c, ok := domain.ParseDetectionCategory(fl.Field().String())
	return ok && c != domain.CategoryUnknown
}

// ValidateAppConfig runs struct tag validation followed by the semantic
// rules tags cannot express. Failures are collected into a single
// domain.ValidationError.
func ValidateAppConfig(cfg *AppConfig) error {
	v := validator.New()
	if err := RegisterConfigValidators(v); err != nil {
		return err
	}

	verr := domain.NewValidationError("AppConfig")
	if err := v.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				verr.AddError(fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			verr.AddError(err.Error())
		}
	}

	seen := make(map[string]struct{}, len(cfg.Scoring.Scorers))
	for _, sc := range cfg.Scoring.Scorers {
		if _, dup := seen[sc.Type]; dup {
			verr.AddError(fmt.Sprintf("scorer type %q configured more than once", sc.Type))
			continue
		}
		seen[sc.Type] = struct{}{}
		if err := ValidateScorerParameters(sc.Type, sc.Parameters); err != nil {
			verr.AddError(err.Error())
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

var inputValidator = validator.New()

// validateInput runs struct tag validation on a service request and reports
// failures as a domain.ValidationError for entity.
func validateInput(entity string, in any) error {
	err := inputValidator.Struct(in)
	if err == nil {
		return nil
	}
	verr := domain.NewValidationError(entity)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			verr.AddError(fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
	} else {
		verr.AddError(err.Error())
	}
	return verr
}
