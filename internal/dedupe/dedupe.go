package dedupe

import (
	"go.uber.org/zap"

	"github.com/sells-group/bidbook/internal/model"
)

// similarityThreshold is the minimum fuzzy-match score for two company names
// to be treated as the same subcontractor.
const similarityThreshold = 0.85

// completeness counts populated identity fields. Reasoning and website are
// excluded: they say nothing about how contactable the record is.
func completeness(p model.Proposal) int {
	count := 0
	for _, f := range []model.FieldValue{p.CompanyName, p.ContactName, p.Email, p.Phone, p.Trade} {
		if f.Present() {
			count++
		}
	}
	return count
}

// Reconcile merges proposals whose company names fuzzy-match. Each group
// keeps its most complete record, annotated with every contributing source
// file; earlier records win completeness ties. Records without a company name
// pass through untouched at the end of the result. The returned count is the
// number of records absorbed by merging.
func Reconcile(proposals []model.Proposal) ([]model.Proposal, int) {
	if len(proposals) == 0 {
		return proposals, 0
	}

	var valid, invalid []model.Proposal
	for _, p := range proposals {
		if p.CompanyName.Present() {
			valid = append(valid, p)
		} else {
			invalid = append(invalid, p)
		}
	}
	if len(valid) <= 1 {
		return proposals, 0
	}

	processed := make([]bool, len(valid))
	deduplicated := make([]model.Proposal, 0, len(valid))
	mergeCount := 0

	for i, proposal := range valid {
		if processed[i] {
			continue
		}

		name := proposal.CompanyName.String()
		group := []int{i}
		sourceFiles := []string{proposal.SourceFile}

		for j := i + 1; j < len(valid); j++ {
			if processed[j] {
				continue
			}
			if Similarity(name, valid[j].CompanyName.String()) >= similarityThreshold {
				group = append(group, j)
				sourceFiles = append(sourceFiles, valid[j].SourceFile)
			}
		}

		if len(group) > 1 {
			mergeCount += len(group) - 1

			best := proposal
			bestCompleteness := completeness(proposal)
			for _, idx := range group[1:] {
				if c := completeness(valid[idx]); c > bestCompleteness {
					best = valid[idx]
					bestCompleteness = c
				}
			}

			best.SourceFiles = sourceFiles
			best.Merged = true
			best.MergeCount = len(group) - 1
			deduplicated = append(deduplicated, best)

			zap.L().Info("dedupe: merged proposals",
				zap.String("company", best.CompanyName.String()),
				zap.Strings("source_files", sourceFiles),
			)
		} else {
			proposal.SourceFiles = []string{proposal.SourceFile}
			deduplicated = append(deduplicated, proposal)
		}

		for _, idx := range group {
			processed[idx] = true
		}
	}

	return append(deduplicated, invalid...), mergeCount
}
