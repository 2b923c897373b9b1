// cmd/tools/policy-check/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"mortgage-workers/internal/common/validation"
	"mortgage-workers/internal/eligibility"
	"mortgage-workers/internal/policy"
	"mortgage-workers/pkg/registry"

	"github.com/shopspring/decimal"
)

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		err = validatePolicy(os.Args[2:])
	case "registry":
		err = validateRegistry(os.Args[2:])
	case "partial", "full", "compute":
		err = calculate(os.Args[1], os.Args[2:])
	case "readiness":
		err = readiness(os.Args[2:])
	case "refinance":
		err = refinance(os.Args[2:])
	case "help":
		help()
		return
	default:
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadPolicy(path string) (*policy.Constants, error) {
	if path == "" {
		return policy.Default()
	}
	return policy.LoadFile(path)
}

func validatePolicy(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.String("path", "configs/policy.json", "Path to policy document")
	fs.Parse(args)

	c, err := policy.LoadFile(*path)
	if err != nil {
		return err
	}
	fmt.Printf("Policy validation passed. Version %s.\n", c.Version())
	return nil
}

func validateRegistry(args []string) error {
	fs := flag.NewFlagSet("registry", flag.ExitOnError)
	path := fs.String("path", "configs/activity-registry.json", "Path to registry file")
	taskType := fs.String("task", "", "Task type whose input schema checks -variables")
	variablesPath := fs.String("variables", "", "Path to job variables JSON")
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		return err
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))

	if *taskType == "" {
		return nil
	}
	data, err := os.ReadFile(*variablesPath)
	if err != nil {
		return fmt.Errorf("failed to read variables: %w", err)
	}
	problems, err := checkVariables(validator, *taskType, data)
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Printf("  %s\n", p)
		}
		return fmt.Errorf("%d input schema violations for %s", len(problems), *taskType)
	}
	fmt.Printf("Variables match the %s input schema.\n", *taskType)
	return nil
}

// checkVariables returns one "field: message" line per schema violation.
func checkVariables(v *validation.Validator, taskType string, data []byte) ([]string, error) {
	if !v.HasSchema(taskType) {
		return nil, fmt.Errorf("no input schema registered for task type %q", taskType)
	}
	result, err := v.ValidateInput(taskType, data)
	if err != nil {
		return nil, err
	}
	return result.GetErrorMessages(), nil
}

func readScenario(path string) (eligibility.Scenario, error) {
	var s eligibility.Scenario
	if path == "" {
		return s, fmt.Errorf("-scenario is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("decode scenario %s: %w", path, err)
	}
	return s, nil
}

func calculate(mode string, args []string) error {
	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	path := fs.String("path", "", "Path to policy document (built-in policy when empty)")
	scenarioPath := fs.String("scenario", "", "Path to scenario JSON")
	fs.Parse(args)

	c, err := loadPolicy(*path)
	if err != nil {
		return err
	}
	s, err := readScenario(*scenarioPath)
	if err != nil {
		return err
	}

	var result interface{}
	switch mode {
	case "partial":
		result, err = eligibility.ComputePartialLimit(c, s)
	case "full":
		result, err = eligibility.ComputeFullEligibility(c, s)
	default:
		result, err = eligibility.Compute(c, s)
	}
	if err != nil {
		return err
	}
	return printJSON(result)
}

func readiness(args []string) error {
	fs := flag.NewFlagSet("readiness", flag.ExitOnError)
	path := fs.String("path", "", "Path to policy document (built-in policy when empty)")
	scenarioPath := fs.String("scenario", "", "Path to scenario JSON")
	loan := fs.String("loan", "", "Proposed loan amount")
	fs.Parse(args)

	proposed, err := decimal.NewFromString(*loan)
	if err != nil {
		return fmt.Errorf("invalid -loan %q: %w", *loan, err)
	}
	c, err := loadPolicy(*path)
	if err != nil {
		return err
	}
	s, err := readScenario(*scenarioPath)
	if err != nil {
		return err
	}

	r, err := eligibility.EvaluateReadiness(c, s, proposed)
	if err != nil {
		return err
	}
	return printJSON(r)
}

func refinance(args []string) error {
	fs := flag.NewFlagSet("refinance", flag.ExitOnError)
	path := fs.String("path", "", "Path to policy document (built-in policy when empty)")
	scenarioPath := fs.String("scenario", "", "Path to refinance scenario JSON")
	fs.Parse(args)

	c, err := loadPolicy(*path)
	if err != nil {
		return err
	}
	if *scenarioPath == "" {
		return fmt.Errorf("-scenario is required")
	}
	data, err := os.ReadFile(*scenarioPath)
	if err != nil {
		return err
	}
	var s eligibility.RefinanceScenario
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode scenario %s: %w", *scenarioPath, err)
	}

	outlook, err := eligibility.ComputeRefinanceOutlook(c, s)
	if err != nil {
		return err
	}
	return printJSON(outlook)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func help() {
	fmt.Print(`
Usage: policy-check <command> [flags]

Commands:
  validate   Validate a policy document
  registry   Validate the activity registry and compile its input schemas;
             with -task and -variables, check job variables against one schema
  partial    Compute the partial limit for a scenario
  full       Compute full eligibility for a scenario
  compute    Compute partial or full eligibility depending on declared income
  readiness  Check a proposed loan against the servicing ratios
  refinance  Compare an existing loan with a refinance and size any cash-out
  help       Show this help message

Examples:
  policy-check validate -path configs/policy.json
  policy-check registry -path configs/activity-registry.json
  policy-check full -path configs/policy.json -scenario scenario.json
  policy-check readiness -scenario scenario.json -loan 400000
  policy-check refinance -scenario refinance.json
  policy-check registry -task evaluate-refinance-outlook -variables vars.json
` + "\n")
}
