// Demo program to showcase the Faultline TUI with a realistic error pool.
package main

import (
	"fmt"
	"os"
	"time"

	"faultline-agent/src/attribution"
	"faultline-agent/src/contracts"
	"faultline-agent/src/fingerprint"
	"faultline-agent/src/logger"
	"faultline-agent/src/pool"
	"faultline-agent/src/registry"
	"faultline-agent/src/submit"
	"faultline-agent/src/triage"
	"faultline-agent/src/tui"
)

func main() {
	fmt.Println("Generating sample error reports...")

	p := pool.NewInMemoryPool()
	for _, record := range sampleRecords() {
		p.Add(record)
	}

	log := logger.NewSilentLogger()
	plugins := samplePlugins()
	resolver := attribution.NewResolver(plugins, log)
	submitters := submit.NewRegistry(plugins, resolver)
	session := triage.NewSession(p, fingerprint.New(), resolver, plugins, submitters, log, nil)

	fmt.Printf("Loaded %d reports in %d groups.\n", session.View().TotalRecords(), session.View().Size())
	fmt.Println("Launching TUI...")
	time.Sleep(500 * time.Millisecond)

	if err := tui.Start(session); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func samplePlugins() contracts.PluginRegistry {
	return registry.NewStaticRegistry([]registry.Entry{
		{
			Descriptor: contracts.PluginDescriptor{
				ID:          "acme-widget",
				Name:        "Acme Widget Toolkit",
				Vendor:      "Acme Corp",
				VendorEmail: "support@acme.example",
			},
			ClassPrefixes: []string{"com.acme.widget."},
		},
		{
			Descriptor: contracts.PluginDescriptor{
				ID:              "inhouse-profiler",
				Name:            "Profiler",
				VendorDeveloped: true,
			},
			ClassPrefixes: []string{"platform.profiler."},
		},
	})
}

func sampleRecords() []*contracts.ErrorRecord {
	base := time.Now().Add(-2 * time.Hour)
	records := []*contracts.ErrorRecord{
		{
			ID:      "demo-001",
			Message: "java.lang.NullPointerException: Cannot invoke paint on null canvas",
			Throwable: contracts.Throwable{
				Category: contracts.CategoryGeneric,
				Type:     "java.lang.NullPointerException",
				Message:  "Cannot invoke paint on null canvas",
				Frames: []contracts.StackFrame{
					{ClassName: "com.acme.widget.Painter", Method: "paint", File: "Painter.java", Line: 142},
					{ClassName: "platform.ui.RenderLoop", Method: "tick", File: "RenderLoop.java", Line: 55},
				},
			},
			Date: base,
		},
		{
			ID:      "demo-002",
			Message: "java.lang.NoSuchMethodError: platform.profiler.Sampler.start()",
			Throwable: contracts.Throwable{
				Category: contracts.CategoryNoSuchMethod,
				Type:     "java.lang.NoSuchMethodError",
				Message:  "platform.profiler.Sampler.start()V",
				Frames: []contracts.StackFrame{
					{ClassName: "platform.profiler.Agent", Method: "attach", File: "Agent.java", Line: 31},
				},
			},
			Date: base.Add(12 * time.Minute),
		},
		{
			ID:      "demo-003",
			Message: "java.io.IOException: disk quota exceeded writing index",
			Throwable: contracts.Throwable{
				Category: contracts.CategoryGeneric,
				Type:     "java.io.IOException",
				Message:  "disk quota exceeded writing index",
				Frames: []contracts.StackFrame{
					{ClassName: "platform.index.Writer", Method: "flush", File: "Writer.java", Line: 208},
				},
			},
			Date: base.Add(25 * time.Minute),
		},
	}

	// Duplicate the first failure a few times so grouping shows up.
	for i := 0; i < 3; i++ {
		dup := *records[0]
		dup.ID = fmt.Sprintf("demo-001-dup-%d", i+1)
		dup.Date = base.Add(time.Duration(30+i*10) * time.Minute)
		records = append(records, &dup)
	}

	return records
}
