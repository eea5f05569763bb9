package engine

// Account holds a balance that the normal transfer path never lets go negative
type Account struct {
	balance int
}

// NewAccount creates an account with the given opening balance
func NewAccount(balance int) *Account {
	return &Account{balance: balance}
}

// Balance returns the current balance
func (a *Account) Balance() int {
	return a.balance
}

// Deposit adds amount to the balance. Non-positive amounts are ignored.
func (a *Account) Deposit(amount int) {
	if amount <= 0 {
		return
	}
	a.balance += amount
}

// Withdraw removes amount from the balance. It fails without side effects
// when amount is not positive or the balance would go negative.
func (a *Account) Withdraw(amount int) bool {
	if amount <= 0 || a.balance-amount < 0 {
		return false
	}
	a.balance -= amount
	return true
}

// Transfer moves amount into to. The destination is untouched when the
// withdrawal fails.
func (a *Account) Transfer(to *Account, amount int) bool {
	if to == nil || !a.Withdraw(amount) {
		return false
	}
	to.Deposit(amount)
	return true
}

// forceDebit subtracts amount even if the balance goes negative. Only the
// bankruptcy path uses it, to expose an unpaid debt.
func (a *Account) forceDebit(amount int) {
	if amount <= 0 {
		return
	}
	a.balance -= amount
}

// Bank is the economic counterparty of every player
type Bank struct {
	account *Account
	opening int
}

// NewBank creates a bank holding the given balance
func NewBank(balance int) *Bank {
	return &Bank{account: NewAccount(balance), opening: balance}
}

// Balance returns the bank's current balance
func (b *Bank) Balance() int {
	return b.account.Balance()
}

// Account exposes the bank's account for transfers
func (b *Bank) Account() *Account {
	return b.account
}

// PayFrom collects amount from a player's account
func (b *Bank) PayFrom(player *Account, amount int) bool {
	if player == nil {
		return false
	}
	return player.Transfer(b.account, amount)
}

// PayTo pays amount to a player's account
func (b *Bank) PayTo(player *Account, amount int) bool {
	if player == nil || amount <= 0 {
		return false
	}
	return b.account.Transfer(player, amount)
}

// Refill resets the bank to its opening balance. Only valid between games.
func (b *Bank) Refill() {
	b.account.balance = b.opening
}
