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

	"loanrisk-workers/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	// Add command flags
	nameAdd := addCmd.String("name", "", "Feature name (e.g., dti_ratio)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Debt-to-Income Ratio)")
	description := addCmd.String("description", "", "Description")
	stage := addCmd.String("stage", "", "Pipeline stage (preprocessing, feature_engineering)")
	kind := addCmd.String("kind", "numeric", "Feature kind (numeric, categorical, flag)")
	defaultVal := addCmd.String("default", "0", "Default value when the source field is missing")
	addCmd.StringVar(&registryPath, "path", "configs/feature-registry.json", "Path to registry file")

	// Update command flags
	nameUpdate := updateCmd.String("name", "", "Feature name to update")
	field := updateCmd.String("field", "", "Field to update (displayName, description, stage, kind, default)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&registryPath, "path", "configs/feature-registry.json", "Path to registry file")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/feature-registry.json", "Path to registry file")

	// List command flags
	stageFilter := listCmd.String("stage", "", "Only list features of this stage")
	listCmd.StringVar(&registryPath, "path", "configs/feature-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *nameAdd == "" || *displayName == "" || *stage == "" {
			fmt.Println("Error: name, displayName, and stage are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		def, err := strconv.ParseFloat(*defaultVal, 64)
		if err != nil {
			fmt.Printf("Error: invalid default value: %v\n", err)
			os.Exit(1)
		}
		feature := registry.Feature{
			Name:        *nameAdd,
			DisplayName: *displayName,
			Description: *description,
			Stage:       *stage,
			Kind:        *kind,
			Default:     def,
			Tags:        []string{},
		}
		if err := addFeature(&feature); err != nil {
			fmt.Printf("Error adding feature: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added feature: %s\n", *nameAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *nameUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: name, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateFeature(*nameUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating feature: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated feature %s, field %s to %s\n", *nameUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "list":
		listCmd.Parse(os.Args[2:])
		if err := listFeatures(*stageFilter); err != nil {
			fmt.Printf("Error listing features: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func addFeature(feature *registry.Feature) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// If file doesn't exist, create new registry
		if os.IsNotExist(err) {
			reg = &registry.FeatureRegistry{
				Version:     "1.0.0",
				LastUpdated: time.Now().Format(time.RFC3339),
				Features:    []registry.Feature{},
			}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	// Check if feature already exists
	for _, existing := range reg.Features {
		if existing.Name == feature.Name {
			return fmt.Errorf("feature with name %s already exists", feature.Name)
		}
	}

	reg.Features = append(reg.Features, *feature)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	return saveRegistry(reg, registryPath)
}

func updateFeature(name, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Features {
		if reg.Features[i].Name == name {
			found = true
			switch field {
			case "displayName":
				reg.Features[i].DisplayName = value
			case "description":
				reg.Features[i].Description = value
			case "stage":
				reg.Features[i].Stage = value
			case "kind":
				reg.Features[i].Kind = value
			case "default":
				def, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return fmt.Errorf("invalid default value: %w", err)
				}
				reg.Features[i].Default = def
			default:
				return fmt.Errorf("unknown field: %s", field)
			}
			break
		}
	}

	if !found {
		return fmt.Errorf("feature with name %s not found", name)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Features) == 0 {
		return fmt.Errorf("registry contains no features")
	}

	names := make(map[string]bool)
	for _, feature := range reg.Features {
		if feature.Name == "" {
			return fmt.Errorf("feature missing required field: Name")
		}
		if names[feature.Name] {
			return fmt.Errorf("duplicate feature name: %s", feature.Name)
		}
		names[feature.Name] = true

		if feature.DisplayName == "" {
			return fmt.Errorf("feature %s missing required field: DisplayName", feature.Name)
		}
		switch feature.Stage {
		case "preprocessing", "feature_engineering":
		default:
			return fmt.Errorf("feature %s has unknown stage: %s", feature.Name, feature.Stage)
		}
		switch feature.Kind {
		case "numeric", "categorical", "flag":
		default:
			return fmt.Errorf("feature %s has unknown kind: %s", feature.Name, feature.Kind)
		}
		if feature.Kind == "categorical" && len(feature.Levels) == 0 {
			return fmt.Errorf("categorical feature %s has no levels", feature.Name)
		}
		if feature.Min != nil && feature.Max != nil && *feature.Min > *feature.Max {
			return fmt.Errorf("feature %s has min greater than max", feature.Name)
		}
	}

	fmt.Printf("Registry validation passed. Found %d features.\n", len(reg.Features))
	return nil
}

func listFeatures(stage string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	features := reg.Features
	if stage != "" {
		features = reg.StageFeatures(stage)
	}

	for _, feature := range features {
		fmt.Printf("%-28s %-20s %-12s default=%g\n", feature.Name, feature.Stage, feature.Kind, feature.Default)
	}
	fmt.Printf("%d features\n", len(features))
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.FeatureRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}

	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new feature to the registry
  update   Update an existing feature's field
  validate Validate the registry file
  list     List features, optionally filtered by stage
  help     Show this help message

Examples:
  registry-updater add -name dti_ratio -displayName "Debt-to-Income Ratio" -description "Loan amount over annual income" -stage feature_engineering -kind numeric
  registry-updater update -name dti_ratio -field description -value "Loan amount relative to annual income"
  registry-updater validate -path configs/feature-registry.json
  registry-updater list -stage preprocessing

Use 'registry-updater <command> -h' for more information about a command.

`)
}
