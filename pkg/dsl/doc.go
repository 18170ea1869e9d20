/*
Package dsl provides a Go DSL for programmatically constructing mango graphs.

It builds the same document a YAML file would hold, using a fluent builder
instead. This is useful for generated pipelines, unit tests, and examples.

Example usage:

	b := dsl.New()
	b.Add("standard-in").
		Then("lines").
		Then("string-contains").Set("value", "error").
		Then("standard-out")

	ed, err := b.Build(mango.WithStdin(os.Stdin))
	if err != nil {
		// handle error
	}
	_, err = mango.NewRunner(os.Stdout).Run(ed)
*/
package dsl
