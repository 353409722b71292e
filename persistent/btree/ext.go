package btree

// An Extension customizes how keys are located in a tree. Extensions work on
// top of the base tree and do not change its structure; they supply the
// Comparator steering the search, which may aggregate information along the
// way (think of trees ordered by relative positions or widths).
type Extension interface {
	Comparator() Comparator
}

// _DefaultExtension locates keys by plain comparison, without aggregation.
type _DefaultExtension struct{}

func (_DefaultExtension) Comparator() Comparator {
	return find
}

// TreeExt wraps a tree for extended operations.
type TreeExt struct {
	tree Tree
	ext  Extension
}

// Ext wraps a tree with an extension.
//
//     loc := tree.Ext(ext).Locate(key)
//
func (tree Tree) Ext(ext Extension) TreeExt {
	return TreeExt{tree: tree, ext: ext}
}

// location is the result of a Locate call: the path from the root down to the
// slot of the key, if present.
type location struct {
	path    slotPath
	present bool
}

// Locate searches for key, using the extension's comparator.
func (tex TreeExt) Locate(key K) location {
	pathBuf := make(slotPath, tex.tree.depth)
	path, found := tex.tree.locate(key, tex.ext.Comparator(), pathBuf)
	return location{path: path, present: found}
}
