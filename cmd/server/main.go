// Package main runs the fusion-and-routing engine: it loads a network
// description, seeds the transform graph, and periodically logs the transforms
// currently resolvable between the configured entities. The transport layer
// feeding live sensor observations is a collaborator and is wired separately.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/edaniels/golog"
	goutils "go.viam.com/utils"

	"github.com/poselink/poselink/config"
	"github.com/poselink/poselink/transformgraph"
)

var logger = golog.NewDevelopmentLogger("poselink")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile      string `flag:"0,usage=network description file"`
	IntervalSeconds int    `flag:"interval,default=5,usage=seconds between status reports"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.ConfigFile == "" {
		return errors.New("config file path required")
	}

	cfg, err := config.Read(argsParsed.ConfigFile)
	if err != nil {
		return err
	}

	graph := transformgraph.NewGraph(logger)
	if err := cfg.ApplyTo(graph); err != nil {
		return err
	}
	logger.Infow("graph seeded",
		"entities", len(graph.Entities()),
		"edges", graph.NumberOfEdges(),
	)

	ticker := time.NewTicker(time.Duration(argsParsed.IntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		if !goutils.SelectContextOrWaitChan(ctx, ticker.C) {
			return ctx.Err()
		}
		reportTransforms(graph, logger)
	}
}

// reportTransforms logs every currently resolvable entity pair. Pairs that are
// not yet connected are expected while the network converges and are skipped.
func reportTransforms(graph *transformgraph.Graph, logger golog.Logger) {
	entities := graph.Entities()
	for _, from := range entities {
		for _, to := range entities {
			if from == to {
				continue
			}
			pose, err := graph.LookupTransform(from, to)
			if err != nil {
				continue
			}
			logger.Debugw("transform",
				"from", from,
				"to", to,
				"translation", pose.Point(),
				"rotation", pose.Rotation(),
			)
		}
	}
}
