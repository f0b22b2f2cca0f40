package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/snowdrift/internal/cli/output"
	"github.com/leapstack-labs/snowdrift/pkg/sqlnorm"
)

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Print SQL in the canonical form used for comparison",
		Long: `Print a SQL statement in the canonical form queries are compared in.

Two statements with the same canonical form are treated as equivalent.
With --definition the input is a stored dynamic table definition and only
the statement inside its outermost parentheses is normalized.

Reads from standard input when no file is given or the file is "-".`,
		Example: `  snowdrift normalize models/orders.sql
  echo "CREATE DYNAMIC TABLE t AS (select 1)" | snowdrift normalize --definition`,
		Args: cobra.MaximumNArgs(1),
		RunE: runNormalize,
	}

	cmd.Flags().Bool("definition", false, "Input is a stored definition; normalize its inner statement")

	return cmd
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	definition, _ := cmd.Flags().GetBool("definition")

	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	sql := string(data)
	if definition {
		sql, err = sqlnorm.ExtractInnerStatement(sql)
		if err != nil {
			return err
		}
	}

	normalized, err := sqlnorm.Normalize(sql)
	if err != nil {
		return err
	}

	r := cc.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(map[string]string{"normalized": normalized})
	case output.ModeMarkdown:
		r.Println(output.FormatCode("sql", normalized))
	default:
		r.Printf("%s", normalized)
	}
	return nil
}
