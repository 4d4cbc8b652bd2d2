package safety

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// backupExt marks compressed backup copies.
const backupExt = ".zst"

// registryName is the backup registry file, written beside the backup
// copies so a resumed session can still roll back.
const registryName = "backups.json"

// persistRegistry snapshots the backup records to the registry file.
func (g *Guard) persistRegistry() error {
	if g.backupRoot == "" {
		return nil
	}

	g.mu.RLock()
	records := make(map[string]BackupRecord, len(g.backups))
	for k, v := range g.backups {
		records[k] = v
	}
	g.mu.RUnlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(g.backupRoot, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(g.backupRoot, registryName), data, 0o644)
}

// loadRegistry restores backup records persisted by a prior process. A
// missing registry is a fresh session; an unreadable one is logged and
// skipped rather than blocking guard construction.
func (g *Guard) loadRegistry() {
	if g.backupRoot == "" {
		return
	}
	data, err := os.ReadFile(filepath.Join(g.backupRoot, registryName))
	if err != nil {
		return
	}

	records := make(map[string]BackupRecord)
	if err := json.Unmarshal(data, &records); err != nil {
		g.logger.Warn("backup registry unreadable, starting empty", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	g.mu.Lock()
	for k, v := range records {
		g.backups[k] = v
	}
	g.mu.Unlock()
	g.logger.Debug("backup registry loaded", map[string]interface{}{"records": len(records)})
}

// compressFile writes a zstd-compressed copy of src to dst.
func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer out.Close()

	enc, err := zstd.NewWriter(out)
	if err != nil {
		return err
	}
	if _, err := io.Copy(enc, in); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// decompressFile restores a compressed backup to dst with the original mode.
func decompressFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	dec, err := zstd.NewReader(in)
	if err != nil {
		return err
	}
	defer dec.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode.Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, dec)
	return err
}
