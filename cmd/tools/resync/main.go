// cmd/tools/resync/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"

	"territory-workers/internal/common/camunda"
)

// Kicks off a territory re-sync for one representative by starting a
// process instance. Meant for operators after a territory definition changed.
func main() {
	broker := flag.String("broker", "localhost:26500", "Zeebe gateway address")
	process := flag.String("process", "territory-resync", "BPMN process ID to start")
	repID := flag.String("rep", "", "Representative ID to re-sync (required)")
	reassign := flag.Bool("reassign", false, "Also re-evaluate locations currently held by the representative")
	delayMs := flag.Int("delay", 200, "Delay between assignment attempts in milliseconds")
	timeout := flag.Duration("timeout", 30*time.Second, "Time to wait for the instance to start")
	flag.Parse()

	if *repID == "" {
		fmt.Println("Error: -rep is required.")
		flag.Usage()
		os.Exit(1)
	}

	client, err := camunda.NewClient(*broker)
	if err != nil {
		fmt.Printf("Error connecting to Zeebe: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	variables := map[string]interface{}{
		"representativeId": *repID,
		"reassign":         *reassign,
		"delayMs":          *delayMs,
	}

	result, err := client.ExecuteWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		cmd, err := client.GetClient().NewCreateInstanceCommand().
			BPMNProcessId(*process).
			LatestVersion().
			VariablesFromMap(variables)
		if err != nil {
			return nil, err
		}
		return cmd.Send(ctx)
	}, "create resync instance")
	if err != nil {
		fmt.Printf("Error starting process instance: %v\n", err)
		os.Exit(1)
	}

	instance := result.(*pb.CreateProcessInstanceResponse)
	fmt.Printf("Started %s instance %d for representative %s (reassign=%v)\n",
		*process, instance.GetProcessInstanceKey(), *repID, *reassign)
}
