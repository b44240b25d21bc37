package idle

import "time"

// ticksSince returns the distance between two 32-bit millisecond tick
// counts. Unsigned subtraction keeps it correct across the 49.7 day wrap.
func ticksSince(now, last uint32) time.Duration {
	return time.Duration(now-last) * time.Millisecond
}
