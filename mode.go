package chatglot

// SelectMode chooses the protocol variant for a text of the given length.
// It is a pure function so the policy is testable apart from any network
// component:
//
//   - Progressive when adaptive and progressive are both enabled and the
//     length exceeds progressiveThreshold.
//   - Adaptive when adaptive is enabled and the length exceeds
//     adaptiveThreshold.
//   - Standard otherwise.
func SelectMode(adaptiveEnabled, progressiveEnabled bool, textLen, adaptiveThreshold, progressiveThreshold int) Mode {
	if adaptiveEnabled && progressiveEnabled && textLen > progressiveThreshold {
		return ModeProgressive
	}
	if adaptiveEnabled && textLen > adaptiveThreshold {
		return ModeAdaptive
	}
	return ModeStandard
}
