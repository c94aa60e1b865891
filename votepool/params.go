package votepool

// Protocol parameters of the voting pool.
const (
	// MinStakeAmount minimum amount of tokens accepted by a single stake.
	MinStakeAmount = 1

	// MinDescLength, MaxDescLength bounds of poll description length.
	MinDescLength = 3
	MaxDescLength = 64

	// DefaultEndHeightBlocks default voting window in blocks, applied when a
	// poll is created without an explicit end height.
	DefaultEndHeightBlocks uint64 = 100_800
)
