package statepaths

import (
	"github.com/arkankau/coffee-chatted/internal/pathutil"
	"github.com/spf13/viper"
)

const (
	StoreDirName      = "store"
	AuditDirName      = "audit"
	FeedbackAuditFile = "feedback.jsonl"
	SQLiteFilename    = "coffeechatted.db"
)

func FileStateDir() string {
	return pathutil.ResolveStateDir(viper.GetString("file_state_dir"))
}

// StoreDir holds the file-backed key/value blobs.
func StoreDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("store.dir_name"),
		StoreDirName,
	)
}

func AuditDir() string {
	return pathutil.ResolveStateChildDir(
		viper.GetString("file_state_dir"),
		viper.GetString("audit.dir_name"),
		AuditDirName,
	)
}

func FeedbackAuditPath() string {
	return pathutil.ResolveStateFile(AuditDir(), FeedbackAuditFile)
}

func SQLitePath() string {
	return pathutil.ResolveStateFile(viper.GetString("file_state_dir"), SQLiteFilename)
}
