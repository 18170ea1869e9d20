package registry

import "github.com/slipstream/mango/pkg/nodes"

var catalog = map[string]Constructor{
	nodes.TypeStandardIn: func(id int64, env Env) nodes.Node {
		return nodes.NewStandardIn(id, env.Stdin)
	},
	nodes.TypeStandardOut: func(id int64, env Env) nodes.Node {
		return nodes.NewStandardOut(id, env.Stdout)
	},
	nodes.TypeLines:         func(id int64, _ Env) nodes.Node { return nodes.NewLines(id) },
	nodes.TypeJSONParse:     func(id int64, _ Env) nodes.Node { return nodes.NewJSONParse(id) },
	nodes.TypeJSONStringify: func(id int64, _ Env) nodes.Node { return nodes.NewJSONStringify(id) },
	nodes.TypeJSONKeys:      func(id int64, _ Env) nodes.Node { return nodes.NewJSONKeys(id) },
	nodes.TypeJSONObject:    func(id int64, _ Env) nodes.Node { return nodes.NewJSONObject(id) },
	nodes.TypeToInt:         func(id int64, _ Env) nodes.Node { return nodes.NewToInt(id) },
	nodes.TypeSum:           func(id int64, _ Env) nodes.Node { return nodes.NewSum(id) },
	nodes.TypeStringContains: func(id int64, _ Env) nodes.Node {
		return nodes.NewStringContains(id, "")
	},
}

// CatalogTypes lists the built-in node types.
func CatalogTypes() []string {
	return []string{
		nodes.TypeStandardIn,
		nodes.TypeStandardOut,
		nodes.TypeLines,
		nodes.TypeJSONParse,
		nodes.TypeJSONStringify,
		nodes.TypeJSONKeys,
		nodes.TypeJSONObject,
		nodes.TypeToInt,
		nodes.TypeSum,
		nodes.TypeStringContains,
	}
}
