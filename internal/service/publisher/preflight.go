package publisher

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/cloudcourier/stack-publisher/internal/config"
	"github.com/cloudcourier/stack-publisher/internal/logger"
)

// objectStoreTool is the CLI the object store and validator implementations shell out to.
const objectStoreTool = "aws"

// preflight verifies every required external tool before any package is
// touched: the object-store CLI plus each package's build command that must
// be resolved via PATH. Relative script paths are resolved by the build
// procedure inside the package directory and are not checked here.
func preflight(ctx context.Context, cfg *config.Config) error {
	required := map[string]struct{}{
		objectStoreTool: {},
	}

	for _, pkg := range cfg.Packages {
		command := pkg.Build[0]
		if strings.ContainsAny(command, `/\`) {
			continue
		}

		required[command] = struct{}{}
	}

	tools := make([]string, 0, len(required))
	for tool := range required {
		tools = append(tools, tool)
	}

	sort.Strings(tools)

	for _, tool := range tools {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%w: %s", errToolNotFound, tool)
		}
	}

	logger.InfoKV(ctx, "Preflight checks passed", "tools", strings.Join(tools, ", "))

	return nil
}
