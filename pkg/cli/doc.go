/*
Package cli provides the helpers shared by the guardian commands.

Output:

Results are written as indented JSON, JSON lines or a short text summary.
OpenOutput returns stdout when no path is given:

	w, err := cli.OpenOutput(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return cli.WriteJSON(w, result, true)

Batch input:

ReadItems accepts one reply per line, either as plain text or as a JSON
object carrying its own conversation context:

	{"text": "Let's count to ten!", "context": {"child_age": 5}}

Exit codes:

Commands that find unsafe content return an ExitError so scripts can tell
"analysis failed" (1) from "content was blocked" (2).

Signal handling:

	ctx, stop := cli.SetupSignalHandler()
	defer stop()
*/
package cli
