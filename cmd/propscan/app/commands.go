package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/propscan/cmd/propscan/cmd/list"
	"github.com/agentstation/propscan/cmd/propscan/cmd/remove"
	"github.com/agentstation/propscan/cmd/propscan/cmd/scan"
	"github.com/agentstation/propscan/cmd/propscan/cmd/version"
)

// CreateScanCommand creates the scan command with app dependencies.
func (a *App) CreateScanCommand() *cobra.Command {
	return scan.NewCommand(a)
}

// CreateRemoveCommand creates the remove command with app dependencies.
func (a *App) CreateRemoveCommand() *cobra.Command {
	return remove.NewCommand(a)
}

// CreateListCommand creates the list command with app dependencies.
func (a *App) CreateListCommand() *cobra.Command {
	return list.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return version.NewCommand(a)
}
