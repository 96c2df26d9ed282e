package commands

import (
	"github.com/spf13/cobra"

	"github.com/gaborage/sqldao/dao"
)

// NewQueryCommand creates the query command
func NewQueryCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <sql> [args...]",
		Short: "Run a query and print every row",
		Example: `  sqldao query "SELECT id, name FROM items WHERE name = ?" widget
  sqldao query -f json "SELECT * FROM items"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatement(cmd, opts, dao.Descriptor{Kind: dao.Query, SQL: args[0], Shape: dao.RowList}, args[1:])
		},
	}
}

// NewGetCommand creates the get command
func NewGetCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "get <sql> [args...]",
		Short:   "Run a query and print its first row, failing when there is none",
		Example: `  sqldao get "SELECT id, name FROM items WHERE id = ?" 42`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatement(cmd, opts, dao.Descriptor{Kind: dao.Query, SQL: args[0], Shape: dao.SingleRow}, args[1:])
		},
	}
}

// NewExecCommand creates the exec command
func NewExecCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql> [args...]",
		Short: "Run an update, delete or DDL statement and print the affected row count",
		Example: `  sqldao exec "UPDATE items SET name = ? WHERE id = ?" gadget 42
  sqldao exec "DELETE FROM items WHERE id = ?" 42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatement(cmd, opts, dao.Descriptor{Kind: dao.Update, SQL: args[0], Shape: dao.RowCount}, args[1:])
		},
	}
}

// InsertOptions holds options for the insert command
type InsertOptions struct {
	Key       bool
	Returning bool
}

// NewInsertCommand creates the insert command
func NewInsertCommand(opts *GlobalOptions) *cobra.Command {
	insert := &InsertOptions{}

	cmd := &cobra.Command{
		Use:   "insert <sql> [args...]",
		Short: "Run an insert and print the affected row count or the generated key",
		Example: `  sqldao insert --key "INSERT INTO items(name) VALUES (?)" widget
  sqldao insert --returning "INSERT INTO items(name) VALUES ($1) RETURNING id" widget`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatement(cmd, opts, insertDescriptor(args[0], insert), args[1:])
		},
	}

	cmd.Flags().BoolVarP(&insert.Key, "key", "k", false, "Print the generated key instead of the row count")
	cmd.Flags().BoolVar(&insert.Returning, "returning", false, "Read the key from the statement's RETURNING clause (implies --key)")

	return cmd
}

func insertDescriptor(sql string, opts *InsertOptions) dao.Descriptor {
	desc := dao.Descriptor{Kind: dao.Insert, SQL: sql, Shape: dao.RowCount}
	if opts.Key || opts.Returning {
		desc.GeneratedKey = true
		desc.Shape = dao.GeneratedKey
	}
	if opts.Returning {
		desc.KeyMode = dao.Returning
	}
	return desc
}
