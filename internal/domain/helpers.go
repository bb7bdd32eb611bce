package domain

// Extensions lists the archive formats component repositories ship, in
// match-precedence order.
func Extensions() []string {
	return []string{".tar.xz", ".tar.gz", ".tar.zst", ".tar.bz2", ".tgz", ".txz", ".tar", ".zip"}
}
