// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"territory-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		runAdd(os.Args[2:])
	case "update":
		runUpdate(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "list":
		runList(os.Args[2:])
	case "help":
		help()
	default:
		help()
		os.Exit(1)
	}
}

func runAdd(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Activity ID (e.g., assign-representative)")
	displayName := fs.String("displayName", "", "Display name")
	description := fs.String("description", "", "Description")
	category := fs.String("category", "", "Category (e.g., territory)")
	taskType := fs.String("taskType", "", "Zeebe task type")
	version := fs.String("version", "1.0.0", "Version")
	implStatus := fs.String("status", "planned", "Implementation status (planned, in-progress, completed, verified)")
	fs.Parse(args)

	if *id == "" || *displayName == "" || *description == "" || *category == "" || *taskType == "" {
		fmt.Println("Error: id, displayName, description, category, and taskType are required for add.")
		fs.Usage()
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		if !os.IsNotExist(err) {
			fatal("failed to load registry: %v", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	if reg.Find(*id) != nil {
		fatal("activity with ID %s already exists", *id)
	}

	reg.Activities = append(reg.Activities, registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *implStatus,
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              "10s",
		Workflows:            []string{},
		Tags:                 []string{},
	})
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	if err := saveRegistry(reg, *path); err != nil {
		fatal("failed to save registry: %v", err)
	}
	fmt.Printf("Added activity: %s\n", *id)
}

func runUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Activity ID to update")
	field := fs.String("field", "", "Field to update (status, version, displayName, description, category, taskType, timeout, retries)")
	value := fs.String("value", "", "New value")
	fs.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		fmt.Println("Error: id, field, and value are required for update.")
		fs.Usage()
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		fatal("failed to load registry: %v", err)
	}

	act := reg.Find(*id)
	if act == nil {
		fatal("activity with ID %s not found", *id)
	}

	switch *field {
	case "status":
		act.ImplementationStatus = *value
	case "version":
		act.Version = *value
	case "displayName":
		act.DisplayName = *value
	case "description":
		act.Description = *value
	case "category":
		act.Category = *value
	case "taskType":
		act.TaskType = *value
	case "timeout":
		act.Timeout = *value
	case "retries":
		retries, err := strconv.Atoi(*value)
		if err != nil {
			fatal("invalid retries value: %v", err)
		}
		act.Retries = retries
	default:
		fatal("unknown field: %s", *field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	if err := saveRegistry(reg, *path); err != nil {
		fatal("failed to save registry: %v", err)
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
}

func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		fatal("failed to load registry: %v", err)
	}
	if len(reg.Activities) == 0 {
		fatal("registry contains no activities")
	}

	ids := make(map[string]bool)
	for _, activity := range reg.Activities {
		if activity.ID == "" {
			fatal("activity missing required field: ID")
		}
		if ids[activity.ID] {
			fatal("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			fatal("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			fatal("activity %s missing required field: TaskType", activity.ID)
		}
		if activity.Category == "" {
			fatal("activity %s missing required field: Category", activity.ID)
		}

		// The worker-generator and admin tooling consume these schemas;
		// a registry entry with a malformed schema must not land.
		if err := compileSchema(activity.InputSchema); err != nil {
			fatal("activity %s has an invalid input schema: %v", activity.ID, err)
		}
		if err := compileSchema(activity.OutputSchema); err != nil {
			fatal("activity %s has an invalid output schema: %v", activity.ID, err)
		}
	}

	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	fs.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		fatal("failed to load registry: %v", err)
	}

	for _, activity := range reg.Activities {
		fmt.Printf("%-24s %-14s %-12s %s\n", activity.ID, activity.Category, activity.ImplementationStatus, activity.DisplayName)
	}
}

func compileSchema(schema map[string]interface{}) error {
	if len(schema) == 0 {
		return nil
	}
	_, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	return err
}

func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func fatal(format string, args ...interface{}) {
	fmt.Printf("Error: "+format+"\n", args...)
	os.Exit(1)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file, including input/output schemas
  list     List registered activities
  help     Show this help message

Examples:
  registry-updater add -id assign-representative -displayName "Assign Representative" -description "Assigns a business location to the closest covering representative" -category territory -taskType assign-representative
  registry-updater update -id assign-representative -field status -value completed
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
