package game

// RegisterBuiltins installs the scripted effects referenced by the shipped
// card data. Call it on the registry before loading the catalog.
func RegisterBuiltins(r *SpecialRegistry) {
	r.Register("salvage_operation", salvageOperation)
	r.Register("scorched_earth", scorchedEarth)
}

// salvageOperation converts the controller's discard pile into credits, one
// per card, subject to the credit cap.
func salvageOperation(ctx *SpecialContext) error {
	controller := ctx.Controller()
	if n := len(controller.Discard); n > 0 {
		ctx.GainCredits(controller, n)
	}
	return nil
}

// scorchedEarth damages every battlefield unit on both sides by the size
// of the controller's discard pile.
func scorchedEarth(ctx *SpecialContext) error {
	amount := len(ctx.Controller().Discard)
	if amount == 0 {
		return nil
	}
	for _, target := range append(ctx.Controller().BattlefieldCards(), ctx.Opponent().BattlefieldCards()...) {
		ctx.DealDamage(target, amount)
	}
	return nil
}
