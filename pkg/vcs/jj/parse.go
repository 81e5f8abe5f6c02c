package jj

import (
	"strings"
	"time"

	"github.com/tjorvi/jujutsuka/pkg/errors"
	"github.com/tjorvi/jujutsuka/pkg/vcs"
)

// Field and record separators for the log template. ASCII unit and record
// separators never occur in commit ids, author fields, or descriptions jj
// will emit, so no escaping is needed.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// logTemplate emits one record per commit with fixed fields:
// commit id, change id, parent commit ids (comma joined), author,
// timestamp (RFC 3339), description, conflict flag. The separators are
// embedded as raw bytes so the template and parseLog share the same consts.
const logTemplate = `commit_id ++ "` + fieldSep + `" ++ change_id ++ "` + fieldSep +
	`" ++ parents.map(|p| p.commit_id()).join(",") ++ "` + fieldSep +
	`" ++ author ++ "` + fieldSep +
	`" ++ committer.timestamp().format("%Y-%m-%dT%H:%M:%S%:z") ++ "` + fieldSep +
	`" ++ description ++ "` + fieldSep +
	`" ++ if(conflict, "true", "false") ++ "` + recordSep + `"`

const timeLayout = "2006-01-02T15:04:05-07:00"

// parseLog decodes template output into commits. Records are validated
// strictly: a field-count or timestamp mismatch means the template and the
// parser have drifted apart, which must surface rather than produce a
// half-read history.
func parseLog(data []byte) ([]vcs.Commit, error) {
	var commits []vcs.Commit
	for _, record := range strings.Split(string(data), recordSep) {
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}
		c, err := parseRecord(record)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, nil
}

func parseRecord(record string) (vcs.Commit, error) {
	fields := strings.Split(record, fieldSep)
	if len(fields) != 7 {
		return vcs.Commit{}, errors.New(errors.ErrCodeInvalidFormat,
			"log record has %d fields, want 7", len(fields))
	}

	if fields[0] == "" {
		return vcs.Commit{}, errors.New(errors.ErrCodeInvalidFormat, "empty commit id in log record")
	}

	ts, err := time.Parse(timeLayout, fields[4])
	if err != nil {
		return vcs.Commit{}, errors.Wrap(errors.ErrCodeInvalidFormat, err,
			"timestamp in log record for %s", fields[0])
	}

	var parents []vcs.CommitID
	if fields[2] != "" {
		for _, p := range strings.Split(fields[2], ",") {
			parents = append(parents, vcs.CommitID(p))
		}
	}

	return vcs.Commit{
		ID:           vcs.CommitID(fields[0]),
		ChangeID:     vcs.ChangeID(fields[1]),
		Parents:      parents,
		Author:       fields[3],
		Timestamp:    ts,
		Description:  fields[5],
		HasConflicts: fields[6] == "true",
	}, nil
}
