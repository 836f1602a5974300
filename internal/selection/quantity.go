package selection

import "context"

// QuantityHandler receives quantity changes for a suggestion. The ledger keeps
// no quantity state of its own; any floor or validation is the handler's.
type QuantityHandler interface {
	ChangeQuantity(ctx context.Context, bookID string, newQuantity int)
}

type QuantityHandlerFunc func(ctx context.Context, bookID string, newQuantity int)

func (f QuantityHandlerFunc) ChangeQuantity(ctx context.Context, bookID string, newQuantity int) {
	f(ctx, bookID, newQuantity)
}

// Step computes the next stepper value without clamping.
func Step(current, delta int) int {
	return current + delta
}

// ChangeQuantity forwards (bookID, newQuantity) to the handler.
func ChangeQuantity(ctx context.Context, h QuantityHandler, bookID string, newQuantity int) {
	h.ChangeQuantity(ctx, bookID, newQuantity)
}

// Increment and Decrement derive the new value from the last rendered
// quantity. Rapid clicks are only coherent if the caller re-renders with the
// returned value before the next click.
func Increment(ctx context.Context, h QuantityHandler, bookID string, current int) int {
	next := Step(current, 1)
	ChangeQuantity(ctx, h, bookID, next)
	return next
}

func Decrement(ctx context.Context, h QuantityHandler, bookID string, current int) int {
	next := Step(current, -1)
	ChangeQuantity(ctx, h, bookID, next)
	return next
}
