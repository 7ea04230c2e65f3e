//go:build linux

package proc

// PidsOfUID returns every visible pid whose effective uid matches, in
// ascending order. Pids whose status becomes unreadable mid-scan are
// skipped. An empty result is not an error; the caller decides whether an
// idle user is worth reporting.
func (fs FS) PidsOfUID(uid uint32) ([]int, error) {
	pids, err := fs.AllPids()
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(pids))
	for _, pid := range pids {
		st, err := fs.Status(pid)
		if err != nil {
			continue
		}
		if st.EffectiveUID == uid {
			out = append(out, pid)
		}
	}
	return out, nil
}
