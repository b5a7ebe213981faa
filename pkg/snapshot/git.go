package snapshot

import (
	"strings"

	git "github.com/go-git/go-git/v5"
)

// collectGit returns git facts for the repository containing dir, or nil
// when no repository is found.
func collectGit(dir string) *GitInfo {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil
	}

	repo, err := git.PlainOpenWithOptions(trimmed, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil
	}

	head, err := repo.Head()
	if err != nil {
		return nil
	}

	info := &GitInfo{Commit: shortHash(head.Hash().String())}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	} else {
		info.Branch = info.Commit
	}

	if worktree, err := repo.Worktree(); err == nil {
		if status, err := worktree.Status(); err == nil {
			info.Dirty = !status.IsClean()
		}
	}

	return info
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
