package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netbatch/netbatch/pkg/logger"
	"github.com/netbatch/netbatch/pkg/models"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	root := t.TempDir()
	store := New(root, logger.NewTestLogger())

	return store, root
}

func readMetadata(t *testing.T, root, host string) models.DeviceMetadata {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(root, SanitizeName(host), metadataFileName))
	require.NoError(t, err)

	var meta models.DeviceMetadata
	require.NoError(t, json.Unmarshal(data, &meta))

	return meta
}

func TestFirstBackupIsAlwaysChanged(t *testing.T) {
	store, root := newTestStore(t)

	res, err := store.Save("R1", "cisco_ios", "hostname R1\ninterface Gi0/1\n")
	require.NoError(t, err)

	assert.True(t, res.Changed)
	assert.Nil(t, res.Diff)
	assert.FileExists(t, res.Path)
	assert.FileExists(t, filepath.Join(root, "R1", latestFileName))

	meta := readMetadata(t, root, "R1")
	assert.Equal(t, "R1", meta.Host)
	assert.Equal(t, "cisco_ios", meta.DeviceType)
	require.Len(t, meta.Backups, 1)
	assert.True(t, meta.Backups[0].Changed)
	assert.Equal(t, meta.LastBackup, meta.Backups[0].Timestamp)
}

func TestIdenticalBackupIsUnchanged(t *testing.T) {
	store, root := newTestStore(t)

	config := "hostname R1\nline vty 0 4\n"

	_, err := store.Save("R1", "cisco_ios", config)
	require.NoError(t, err)

	// Distinct timestamp for the second run.
	store.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	res, err := store.Save("R1", "cisco_ios", config)
	require.NoError(t, err)

	assert.False(t, res.Changed)
	assert.Nil(t, res.Diff)

	meta := readMetadata(t, root, "R1")
	require.Len(t, meta.Backups, 2)
	assert.False(t, meta.Backups[1].Changed)
	assert.Equal(t, meta.Backups[0].Hash, meta.Backups[1].Hash)
}

func TestChangedBackupProducesDiff(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Save("R1", "cisco_ios", "hostname R1\nsnmp-server community old\n")
	require.NoError(t, err)

	store.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	res, err := store.Save("R1", "cisco_ios", "hostname R1\nsnmp-server community new\nntp server 10.0.0.5\n")
	require.NoError(t, err)

	assert.True(t, res.Changed)
	require.NotNil(t, res.Diff)
	assert.Equal(t, 2, res.Diff.AddedLines)
	assert.Equal(t, 1, res.Diff.RemovedLines)
	assert.Contains(t, res.Diff.Preview, "+snmp-server community new")
	assert.Contains(t, res.Diff.Preview, "-snmp-server community old")
	assert.Positive(t, res.Diff.AddedLines+res.Diff.RemovedLines)
}

func TestLatestPointerOverwritten(t *testing.T) {
	store, root := newTestStore(t)

	_, err := store.Save("R1", "cisco_ios", "v1\n")
	require.NoError(t, err)

	store.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	_, err = store.Save("R1", "cisco_ios", "v2\n")
	require.NoError(t, err)

	latest, err := os.ReadFile(filepath.Join(root, "R1", latestFileName))
	require.NoError(t, err)
	assert.Equal(t, "v2\n", string(latest))
}

func TestEmptyConfigIsRetrievalFailure(t *testing.T) {
	store, root := newTestStore(t)

	_, err := store.Save("R1", "cisco_ios", "")
	require.ErrorIs(t, err, ErrEmptyConfig)

	_, err = store.Save("R1", "cisco_ios", "   \n\t\n")
	require.ErrorIs(t, err, ErrEmptyConfig)

	// Nothing was written.
	assert.NoDirExists(t, filepath.Join(root, "R1"))
}

func TestHistoryIsCappedAtOneHundred(t *testing.T) {
	store, root := newTestStore(t)

	deviceDir := filepath.Join(root, "R1")
	require.NoError(t, os.MkdirAll(deviceDir, 0o750))

	meta := models.DeviceMetadata{Host: "R1", DeviceType: "cisco_ios"}
	for i := 0; i < maxHistoryRecords; i++ {
		meta.Backups = append(meta.Backups, models.BackupRecord{
			Timestamp: fmt.Sprintf("ts-%03d", i),
			Hash:      fmt.Sprintf("hash-%03d", i),
			Changed:   i == 0,
		})
	}

	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(deviceDir, metadataFileName), data, 0o600))

	_, err = store.Save("R1", "cisco_ios", "hostname R1\n")
	require.NoError(t, err)

	got := readMetadata(t, root, "R1")
	require.Len(t, got.Backups, maxHistoryRecords)

	// The oldest record was evicted; the newest is last.
	assert.Equal(t, "ts-001", got.Backups[0].Timestamp)
	assert.Equal(t, got.LastBackup, got.Backups[maxHistoryRecords-1].Timestamp)
}

func TestCorruptMetadataStartsFresh(t *testing.T) {
	store, root := newTestStore(t)

	deviceDir := filepath.Join(root, "R1")
	require.NoError(t, os.MkdirAll(deviceDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(deviceDir, metadataFileName), []byte("{not json"), 0o600))

	_, err := store.Save("R1", "cisco_ios", "hostname R1\n")
	require.NoError(t, err)

	meta := readMetadata(t, root, "R1")
	require.Len(t, meta.Backups, 1)
}

func TestSanitizeNameIsDeterministic(t *testing.T) {
	assert.Equal(t, "192_168_1_1", SanitizeName("192.168.1.1"))
	assert.Equal(t, "fe80__1", SanitizeName("fe80::1"))
	assert.Equal(t, "core_rtr_nyc", SanitizeName("core/rtr nyc"))
	assert.Equal(t, SanitizeName("R1.lab"), SanitizeName("R1.lab"))
}

func TestListBackups(t *testing.T) {
	store, root := newTestStore(t)

	_, err := store.Save("192.168.1.1", "cisco_ios", "hostname R1\n")
	require.NoError(t, err)

	_, err = store.Save("192.168.1.2", "juniper", "system { host-name R2; }\n")
	require.NoError(t, err)

	all, err := ListBackups(root, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	one, err := ListBackups(root, "192.168.1.2")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "192.168.1.2", one[0].Host)
	assert.Equal(t, "juniper", one[0].DeviceType)
	assert.Equal(t, 1, one[0].BackupCount)
}

func TestListBackupsMissingRoot(t *testing.T) {
	listings, err := ListBackups(filepath.Join(t.TempDir(), "absent"), "")
	require.NoError(t, err)
	assert.Nil(t, listings)
}
