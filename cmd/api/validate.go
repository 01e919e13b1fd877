package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recipe-explorer/internal/core/recipe"
	"recipe-explorer/internal/pkg/common"
)

// errInvalidImport 匯入檔未通過驗證
var errInvalidImport = errors.New("import file is invalid")

var validateMaxRecipes int

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Validate a recipe import file without starting the server",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().IntVar(&validateMaxRecipes, "max-recipes", recipe.DefaultMaxImport, "maximum number of recipes allowed in one file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	var data any
	if err := common.DecodeJSON(f, &data); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	records, result := recipe.NewValidator(validateMaxRecipes).ValidateImport(data)
	if !result.IsValid() {
		fmt.Fprintf(out, "%s: %d validation error(s)\n", path, len(result.Errors))
		for _, fe := range result.Errors {
			fmt.Fprintf(out, "  %s [%s] %s\n", fe.Field, fe.Code, fe.Message)
		}
		return errInvalidImport
	}

	fmt.Fprintf(out, "%s: %d recipe(s) valid\n", path, len(records))
	return nil
}
