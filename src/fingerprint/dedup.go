package fingerprint

// Fingerprinted pairs a batch item's position with its computed hash.
type Fingerprinted struct {
	Index int
	Hash  string
}

// Duplicate is a batch item that matched an earlier fingerprint. CrossBatch
// is set when the match was against the persisted set rather than another
// item in the same batch.
type Duplicate struct {
	Fingerprinted
	MatchedFingerprint string
	CrossBatch         bool
}

// PartitionResult splits a batch into items to insert and items to drop.
type PartitionResult struct {
	Unique     []Fingerprinted
	Duplicates []Duplicate
}

// Partition classifies a fingerprinted batch against itself and against the
// set of fingerprints already persisted for the user. Iteration order is the
// tie-break: the first occurrence of a hash within the batch is canonical and
// every later occurrence is a duplicate referencing it. Running Partition
// twice over the same inputs yields the same classification.
func Partition(batch []Fingerprinted, existing map[string]struct{}) PartitionResult {
	seen := make(map[string]struct{}, len(batch))
	var res PartitionResult
	for _, item := range batch {
		if _, ok := existing[item.Hash]; ok {
			res.Duplicates = append(res.Duplicates, Duplicate{item, item.Hash, true})
			continue
		}
		if _, ok := seen[item.Hash]; ok {
			res.Duplicates = append(res.Duplicates, Duplicate{item, item.Hash, false})
			continue
		}
		seen[item.Hash] = struct{}{}
		res.Unique = append(res.Unique, item)
	}
	return res
}
