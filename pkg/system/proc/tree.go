//go:build linux

package proc

import (
	"sort"

	"github.com/pkg/errors"
)

// Tree is an immutable parent/child snapshot of the process table, built
// once per inspection and discarded with it.
type Tree struct {
	parent   map[int]int
	children map[int][]int
	pids     []int
}

// Tree enumerates the mount once and links each pid to its parent. Pids that
// vanish between enumeration and the status read are omitted; the snapshot
// never fails because a process exited mid-scan.
func (fs FS) Tree() (*Tree, error) {
	pids, err := fs.AllPids()
	if err != nil {
		return nil, err
	}
	parent := make(map[int]int, len(pids))
	for _, pid := range pids {
		st, err := fs.Status(pid)
		if err != nil {
			continue
		}
		parent[pid] = st.PPID
	}
	return newTree(parent), nil
}

func newTree(parent map[int]int) *Tree {
	t := &Tree{
		parent:   parent,
		children: make(map[int][]int, len(parent)),
		pids:     make([]int, 0, len(parent)),
	}
	for pid, ppid := range parent {
		t.pids = append(t.pids, pid)
		t.children[ppid] = append(t.children[ppid], pid)
	}
	sort.Ints(t.pids)
	for _, kids := range t.children {
		sort.Ints(kids)
	}
	return t
}

// Len returns the number of processes in the snapshot.
func (t *Tree) Len() int { return len(t.pids) }

// Pids returns every pid in the snapshot, ascending.
func (t *Tree) Pids() []int {
	out := make([]int, len(t.pids))
	copy(out, t.pids)
	return out
}

// Parent returns the recorded parent of pid and whether pid is in the
// snapshot.
func (t *Tree) Parent(pid int) (int, bool) {
	ppid, ok := t.parent[pid]
	return ppid, ok
}

// Children returns the direct children of pid, ascending.
func (t *Tree) Children(pid int) []int {
	kids := t.children[pid]
	out := make([]int, len(kids))
	copy(out, kids)
	return out
}

// Descendants returns root and all its transitive descendants, ascending.
// The walk keeps a visited set so a stale parent link (pid reuse can produce
// one, even a self-referential edge) terminates instead of looping. A root
// absent from the snapshot is ErrTargetNotFound.
func (t *Tree) Descendants(root int) ([]int, error) {
	if _, ok := t.parent[root]; !ok {
		return nil, errors.Wrapf(ErrTargetNotFound, "pid %d", root)
	}
	visited := map[int]struct{}{root: {}}
	out := []int{root}
	queue := []int{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range t.children[cur] {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			out = append(out, child)
			queue = append(queue, child)
		}
	}
	sort.Ints(out)
	return out, nil
}
