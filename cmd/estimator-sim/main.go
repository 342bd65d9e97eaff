/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// estimator-sim feeds a random stream of values to every frequency estimator and reports how far each one
// drifts from the exact counts.
//
// Usage:
//
//	estimator-sim -config configs/scenario.yaml -hasher xxhash -log-format json
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/leosingleton/pennylogger/count"
	"github.com/leosingleton/pennylogger/estimator"
	"github.com/leosingleton/pennylogger/filters"
	"github.com/leosingleton/pennylogger/internal/simulation"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML scenario file (defaults apply when empty)")
	seed := flag.Int64("seed", 0, "Overrides the scenario seed when non-zero")
	hasher := flag.String("hasher", "", "Overrides the scenario hasher (builtin, murmur3 or xxhash)")
	maxBytes := flag.Int64("max-bytes", 128*1024, "Byte budget of the scalable estimators")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "text", "Log format (text or json)")
	flag.Parse()

	logger, err := newLogger(*logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging flags: %v\n", err)
		os.Exit(2)
	}

	scenario := simulation.DefaultScenario()
	if *configPath != "" {
		loaded, err := simulation.LoadScenario(*configPath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load scenario")
		}
		scenario = *loaded
	}
	if *seed != 0 {
		scenario.Seed = *seed
	}
	if *hasher != "" {
		scenario.Hasher = *hasher
	}

	subjects, err := newSubjects(*maxBytes)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create estimators")
	}

	sim, err := simulation.NewSimulation(scenario, subjects...)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create simulation")
	}

	logger.WithFields(logrus.Fields{
		"iterations": scenario.Iterations,
		"seed":       scenario.Seed,
		"hasher":     scenario.Hasher,
		"estimators": len(subjects),
	}).Info("Starting simulation")

	reports, err := sim.Run()
	if err != nil {
		logger.WithError(err).Fatal("Simulation failed")
	}

	for n, report := range reports {
		for _, summary := range report {
			logSummary(logger.WithField("iteration", n), summary)
		}
	}
}

func newLogger(level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(parsed)

	switch format {
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return logger, nil
}

// newSubjects returns every estimator kind, with the scalable ones limited to maxBytes.
func newSubjects(maxBytes int64) ([]*simulation.Subject, error) {
	cms, err := count.NewCountMinSketch(0.001, 0.001)
	if err != nil {
		return nil, err
	}
	cmms, err := count.NewCountMeanMinSketch(0.001, 0.001)
	if err != nil {
		return nil, err
	}
	cuckoo, err := filters.NewCuckooFilter2Way[filters.Bucket64Counting](1024)
	if err != nil {
		return nil, err
	}
	bloom, err := filters.NewScalableBloomFilter()
	if err != nil {
		return nil, err
	}

	scalable := map[string]estimator.FrequencyEstimator{
		"CascadingCuckooFilter2Way": filters.NewCascadingCuckooFilter2Way(),
		"CascadingCuckooFilter4Way": filters.NewCascadingCuckooFilter4Way(),
		"ScalableBloomFilter":       bloom,
	}

	subjects := []*simulation.Subject{
		simulation.NewSubject("Zero", &simulation.ZeroEstimator{}),
		simulation.NewSubject("CountMinSketch(0.001,0.001)", cms),
		simulation.NewSubject("CountMeanMinSketch(0.001,0.001)", cmms),
		simulation.NewSubject("CuckooFilter2Way<Bucket64Counting>(1024)", cuckoo),
	}
	for _, name := range []string{"CascadingCuckooFilter2Way", "CascadingCuckooFilter4Way", "ScalableBloomFilter"} {
		est := scalable[name]
		est.SetMaxBytes(maxBytes)
		subjects = append(subjects, simulation.NewSubject(name, est))
	}
	return subjects, nil
}

func logSummary(logger logrus.FieldLogger, summary simulation.Summary) {
	logger.WithFields(logrus.Fields{
		"estimator":         summary.Name,
		"successes":         summary.Successes,
		"overflows":         summary.Overflows,
		"no_capacity":       summary.NoCapacities,
		"total_bytes":       summary.TotalBytes,
		"load_factor":       fmt.Sprintf("%.1f%%", summary.LoadFactor),
		"unique_values":     summary.UniqueValues,
		"total_count":       summary.TotalCount,
		"avg_error":         summary.AverageError,
		"avg_error_ex_ovf":  summary.AverageErrorExOverflow,
		"max_error":         summary.MaxError,
		"max_error_ex_ovf":  summary.MaxErrorExOverflow,
		"compression_ratio": fmt.Sprintf("%.1f%%", summary.CompressionRatio),
	}).Info("Estimator summary")
}
