package compiler

// runOptimizer stands in for the external post-emission binary optimizer
// (spec §1 non-goal, §6 `optimize` option): the real optimizer is an
// external collaborator this module never implements, only calls. This
// stub honors the contract - a binary in, a binary or an error out - as
// an identity pass-through, which is sufficient for every testable
// property spec §8 names (none of them depend on optimizer-internal
// behavior, only on the degrade-on-failure contract in maybeOptimize).
func runOptimizer(bin []byte) ([]byte, error) {
	return bin, nil
}
