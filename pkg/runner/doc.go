/*
Package runner implements the interactive command loop used by "thicket pick".

It acts as the bridge between a mounted thicket.Tree and the outside world.
The runner parses commands, applies them to the tree, redraws it and persists
the session after every committed change.

# Key Components

  - Runner: the command loop.
  - IOHandler: decouples how commands arrive and views leave (text, JSON).
  - TextHandler: the implementation for interactive terminal usage.
  - SanitizeInput / SanitizeID: input policy shared with the HTTP and MCP adapters.

# Usage

	r := runner.NewRunner(
		runner.WithStore(store),
		runner.WithSessionID("weekly"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx, tree); err != nil {
		log.Fatal(err)
	}
*/
package runner
