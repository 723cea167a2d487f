package learn

import "math/rand/v2"

// Occasion selects a quip list.
type Occasion int

const (
	OnInit Occasion = iota
	OnAdd
	OnCommit
	OnStatus
	OnLog
	OnBranch
	OnMerge
	OnLearn
)

var quips = map[Occasion][]string{
	OnInit: {
		"Ready to bruh responsibly. Or not.",
		"Repository initialized. Now go break something.",
		"gg repo created. It's not a phase, mom, it's version control.",
		"Repository created. Time to commit to your commitment issues.",
	},
	OnAdd: {
		"File staged. Hope you know what you're doing. I sure don't.",
		"Added to staging area. The point of no return is getting closer.",
		"Staged. And in a few more commands, your bugs become immortalized.",
		"File staged. Your future self will wonder why you did this.",
	},
	OnCommit: {
		"Kermit successful. A legendary commit. Or a legendary disaster. Time will tell.",
		"Changes committed. What could possibly go wrong? (Don't answer that.)",
		"Immortalized in the DAG. Your bugs are now part of history.",
		"Committed! Your future self will wonder what you were thinking.",
	},
	OnStatus: {
		"Here's what you broke today. Congratulations.",
		"Your repository status: It's complicated.",
		"Status check complete. Have you tried turning it off and on again?",
	},
	OnLog: {
		"From small beginnings come large bugs.",
		"Behold, the archaeology of your mistakes!",
		"Every commit tells a story. Usually a horror story.",
		"This is your code's family tree. It's got some interesting branches.",
	},
	OnBranch: {
		"New branch created. More timelines, more ways to fail gloriously.",
		"Branched! Divide and...probably make more bugs.",
		"Branch created. You're one step closer to merge conflict hell.",
	},
	OnMerge: {
		"Branches merged. The DAG grows more complex, just like your problems.",
		"Merge complete. Somewhere, a CS professor is shedding a tear of joy.",
		"Branches successfully united. The code still works. For now.",
	},
	OnLearn: {
		"No cycles allowed. It's not your friend group drama.",
		"Learning complete. You're not Linus Torvalds yet, but you're closer.",
		"Education complete. You're now 0.1% smarter than before.",
		"Learning accomplished. Your CS professor would be slightly less disappointed.",
	},
}

// Quip picks a line for o, or "" when o has none.
func Quip(o Occasion, rng *rand.Rand) string {
	list := quips[o]
	if len(list) == 0 {
		return ""
	}
	return list[rng.IntN(len(list))]
}
