// Package upload dispatches a transformed output file to its configured
// destinations via curl, the way the original pipeline shells out for
// sftp/scp/http(s) transfers.
package upload

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tbielander/xtract/internal/rewriteconfig"
)

// Run invokes curl for a single upload destination against filePath.
// Protocol is matched case-insensitively; sftp/scp use key-based auth via
// --key/--pubkey, http(s) posts the file body with an XML content type.
// An unrecognized protocol is reported as an error rather than silently
// skipped.
func Run(u rewriteconfig.Upload, filePath string) error {
	protocol := strings.ToLower(u.Protocol)
	uploadPath := fmt.Sprintf("%s://%s%s/", protocol, u.Server, u.Path)

	var cmd *exec.Cmd
	switch protocol {
	case "sftp", "scp":
		cmd = exec.Command("curl",
			"-m", strconv.FormatFloat(u.Timeout, 'f', -1, 64),
			"-u", u.User+":",
			"--key", u.Key,
			"--pubkey", u.Pubkey,
			"-T", filePath,
			uploadPath,
		)
	case "https", "http":
		cmd = exec.Command("curl",
			"-m", strconv.FormatFloat(u.Timeout, 'f', -1, 64),
			"-d", "@"+filePath,
			"-H", "Content-Type: application/xml",
			uploadPath,
		)
	default:
		return fmt.Errorf("unsupported upload protocol %q", u.Protocol)
	}

	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("curl to %s failed: %w (%s)", u.Server, err, out.String())
	}
	return nil
}

// check runs one upload and logs the outcome, matching the original's
// upload_check helper.
func check(u rewriteconfig.Upload, filePath string) bool {
	if err := Run(u, filePath); err != nil {
		logrus.WithFields(logrus.Fields{"file": filePath, "server": u.Server}).WithError(err).Error("upload failed")
		return false
	}
	logrus.WithFields(logrus.Fields{"file": filePath, "server": u.Server}).Info("upload successful")
	return true
}

// allowed reports whether the group prefix is a permitted destination for
// upload u, given its include/exclude lists. With both lists empty the
// residue and default groups are excluded from upload by convention —
// everything else qualifies.
func allowed(u rewriteconfig.Upload, prefix, residueGroup, defaultGroup string) bool {
	switch {
	case len(u.Include) == 0 && len(u.Exclude) == 0:
		return prefix != residueGroup && prefix != defaultGroup
	case len(u.Include) == 0:
		return !contains(u.Exclude, prefix)
	case len(u.Exclude) == 0:
		return contains(u.Include, prefix)
	default:
		return contains(u.Include, prefix) && !contains(u.Exclude, prefix)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// RunAll dispatches filePath, whose basename starts with "<group>_", to
// every active upload destination its group prefix is allowed for. It
// returns the destinations that failed (or, if the filename carries no
// recognizable group prefix, every active destination).
func RunAll(uploads []rewriteconfig.Upload, filePath, residueGroup, defaultGroup string) []rewriteconfig.Upload {
	base := filePath
	if idx := strings.LastIndex(filePath, "/"); idx >= 0 {
		base = filePath[idx+1:]
	}
	parts := strings.SplitN(base, "_", 2)
	if parts[0] == "" {
		logrus.WithField("file", base).Error("upload aborted: missing group prefix")
		var active []rewriteconfig.Upload
		for _, u := range uploads {
			if u.Active {
				active = append(active, u)
			}
		}
		return active
	}
	prefix := parts[0]

	var failed []rewriteconfig.Upload
	for _, u := range uploads {
		if !u.Active {
			continue
		}
		if !allowed(u, prefix, residueGroup, defaultGroup) {
			continue
		}
		if !check(u, filePath) {
			failed = append(failed, u)
		}
	}
	return failed
}
