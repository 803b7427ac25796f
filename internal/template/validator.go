package template

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CLIValidator validates templates by shelling out to the CloudFormation CLI.
// The validation service is an external collaborator; only its verdict matters.
type CLIValidator struct {
	// Region is passed to the CLI so validation happens against the target region.
	Region string
}

// NewCLIValidator creates a validator for the given region.
func NewCLIValidator(region string) *CLIValidator {
	return &CLIValidator{Region: region}
}

// Validate submits the uploaded template URL for validation and returns a
// descriptive error when the service rejects it.
func (v *CLIValidator) Validate(ctx context.Context, templateURL string) error {
	cmd := exec.CommandContext(ctx, "aws", "cloudformation", "validate-template",
		"--template-url", templateURL,
		"--region", v.Region)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("template validation rejected %s: %s: %w",
			templateURL, strings.TrimSpace(string(output)), err)
	}

	return nil
}
