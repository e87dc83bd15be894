// Command tuner runs the tuning pipeline against the default input device
// and prints meter readings and announcements to the terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-tuner/capture"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		instrument = flag.String("instrument", "", "band preset: guitar, bass, ukulele, violin")
		note       = flag.String("note", "", "fixed target note, e.g. A4 or E2 (default: chromatic)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		logging.SetLevel(logging.DebugLevel)
	}

	cfg, err := loadConfig(*configPath, *instrument)
	if err != nil {
		logging.Error(err, "invalid configuration")
		os.Exit(1)
	}

	source, err := capture.OpenPortAudioSource(cfg.SampleRate, cfg.HopSize)
	if err != nil {
		logging.Error(err, "failed to open input device")
		os.Exit(1)
	}

	session, err := tuner.NewSession(cfg, source)
	if err != nil {
		source.Close()
		logging.Error(err, "failed to create session")
		os.Exit(1)
	}

	if *note != "" {
		freq, err := tuner.NoteFrequency(*note)
		if err != nil {
			source.Close()
			logging.Error(err, "invalid target note")
			os.Exit(1)
		}
		session.SetTarget(tuner.TuningTarget{Note: *note, Frequency: freq})
	} else {
		// Chromatic mode: classify against the nearest note
		session.SetTargetFunc(func(frequency float64) tuner.TuningTarget {
			target, _ := tuner.NearestNote(frequency)
			return target
		})
	}

	session.SetReadingHandler(printReading)
	session.SetAnnounceHandler(func(note string, status tuner.TuningStatus, cents float64) {
		fmt.Printf("\n>>> %s %s (%+.1f cents)\n", note, status, cents)
	})

	if err := session.Start(); err != nil {
		source.Close()
		logging.Error(err, "failed to start session")
		os.Exit(1)
	}

	logging.Info("listening; press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	session.Stop()
	logging.Info("stopped")
}

// loadConfig resolves the pipeline configuration: instrument preset or
// defaults, then optional YAML overrides.
func loadConfig(path, instrument string) (*tuner.Config, error) {
	var cfg *tuner.Config
	if instrument != "" {
		cfg = tuner.InstrumentOptimizedConfig(tuner.Instrument(instrument))
	} else {
		cfg = tuner.DefaultConfig()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printReading(r tuner.Reading) {
	if !r.Estimate.Voiced() {
		fmt.Printf("\r%-60s", "...")
		return
	}
	fmt.Printf("\r%6.1f Hz  %-3s %-7s %+6.1f cents  (conf %.2f)   ",
		r.Estimate.Frequency, r.Target.Note, r.Status, r.Cents, r.Estimate.Confidence)
}
