package clipboard

// SuppressionToken is a one-shot marker telling the ingest path that the next
// matching observation is our own replay. It is armed before the OS clipboard
// write and consumed at most once. Callers provide their own locking.
type SuppressionToken[K comparable] struct {
	value K
	armed bool
}

// Arm sets the token, replacing any previously armed value
func (t *SuppressionToken[K]) Arm(v K) {
	t.value = v
	t.armed = true
}

// Disarm clears the token without consuming it
func (t *SuppressionToken[K]) Disarm() {
	var zero K
	t.value = zero
	t.armed = false
}

// Armed returns the armed value, if any
func (t *SuppressionToken[K]) Armed() (K, bool) {
	return t.value, t.armed
}

// TryConsume disarms the token and returns true if it is armed with v
func (t *SuppressionToken[K]) TryConsume(v K) bool {
	return t.TryConsumeFunc(func(armed K) bool { return armed == v })
}

// TryConsumeFunc disarms the token and returns true if match accepts the armed value
func (t *SuppressionToken[K]) TryConsumeFunc(match func(armed K) bool) bool {
	if !t.armed || !match(t.value) {
		return false
	}
	t.Disarm()
	return true
}
