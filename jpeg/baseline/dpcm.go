package baseline

// encodeDC replaces every DC coefficient by its difference from the previous
// data unit of the same component, in scan order. Each component starts
// from a predictor of 0.
func encodeDC(mcus []MCU, components int) {
	pred := make([]int32, components)
	for _, m := range mcus {
		for ci, units := range m {
			for j := range units {
				dc := units[j][0]
				units[j][0] = dc - pred[ci]
				pred[ci] = dc
			}
		}
	}
}

// decodeDC inverts encodeDC with a running sum per component.
func decodeDC(mcus []MCU, components int) {
	pred := make([]int32, components)
	for _, m := range mcus {
		for ci, units := range m {
			for j := range units {
				pred[ci] += units[j][0]
				units[j][0] = pred[ci]
			}
		}
	}
}
