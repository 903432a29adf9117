// ddogctl is a CLI for querying Datadog from the terminal.
//
// # Commands
//
//	ddogctl auth status
//	  Validate the configured API key.
//
//	ddogctl monitors list | mute
//	ddogctl dashboards get
//	ddogctl incidents create
//	ddogctl synthetics trigger
//
//	ddogctl logs query --service <svc> [--env e] [--from expr] [--to expr]
//	ddogctl apm spans list | search
//	ddogctl apm errors top-resources | rate
//	ddogctl metrics query | k8s-resources | tag-cardinality
//	ddogctl services catalog ... | definitions ...
//
//	ddogctl service troubleshoot --service <svc>
//	  Unified APM+Logs diagnostic view with a heuristic summary.
//
// Credentials come from DD_API_KEY/DD_APP_KEY/DD_SITE or from the
// contexts file at ~/.config/ddogctl/config.yaml. Help texts are Spanish
// by default; set DDOGCTL_LANG=en for English.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/45p1d4/ddogctl/internal/cli"
	"github.com/45p1d4/ddogctl/internal/i18n"
)

func main() {
	lang := i18n.Detect(os.Getenv("DDOGCTL_LANG"))

	logger := zap.NewNop()
	if os.Getenv("DDOGCTL_DEBUG") != "" {
		logConfig := zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		logConfig.OutputPaths = []string{"stderr"}
		built, err := logConfig.Build()
		if err == nil {
			logger = built
		}
	}
	defer logger.Sync()

	app := cli.NewApp(cli.AppOptions{
		Translator: i18n.New(lang),
		Stdout:     os.Stdout,
		Logger:     logger,
	})
	if err := app.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
