package models

// VaultIndex is the advisory per-account list of known object ids, kept in
// the key-value store. It exists to spare write paths a full bucket listing
// and is never consulted when composing sync: the blob store is ground
// truth, so stale entries (in either direction) are harmless.
type VaultIndex struct {
	CipherIDs []string `json:"cipherIds"`
	FolderIDs []string `json:"folderIds"`
	Revision  int64    `json:"revision"`
}

// HasCipher reports whether id is present in the cipher id list.
func (i *VaultIndex) HasCipher(id string) bool {
	return contains(i.CipherIDs, id)
}

// HasFolder reports whether id is present in the folder id list.
func (i *VaultIndex) HasFolder(id string) bool {
	return contains(i.FolderIDs, id)
}

// AddCipher appends id if absent and reports whether the index changed.
func (i *VaultIndex) AddCipher(id string) bool {
	if i.HasCipher(id) {
		return false
	}
	i.CipherIDs = append(i.CipherIDs, id)
	return true
}

// AddFolder appends id if absent and reports whether the index changed.
func (i *VaultIndex) AddFolder(id string) bool {
	if i.HasFolder(id) {
		return false
	}
	i.FolderIDs = append(i.FolderIDs, id)
	return true
}

// RemoveCipher deletes id and reports whether the index changed.
func (i *VaultIndex) RemoveCipher(id string) bool {
	var changed bool
	i.CipherIDs, changed = removeID(i.CipherIDs, id)
	return changed
}

// RemoveFolder deletes id and reports whether the index changed.
func (i *VaultIndex) RemoveFolder(id string) bool {
	var changed bool
	i.FolderIDs, changed = removeID(i.FolderIDs, id)
	return changed
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) ([]string, bool) {
	for n, v := range ids {
		if v == id {
			return append(ids[:n], ids[n+1:]...), true
		}
	}
	return ids, false
}
