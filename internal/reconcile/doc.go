// Package reconcile holds the daily cash reconciliation rules of an outlet.
//
// A day is described by the reported total sale, the revenue of every
// non-counter channel, the expenses paid out of the drawer and the count of
// notes found in the drawer at close. From those the package derives:
//
//	counter cash  = total sale - (pos + swiggy + zomato online + zomato cash + uengage online + uengage cash)
//	total expense = sum of expense amounts
//	cash in hand  = counter cash + zomato cash + uengage cash - total expense + opening balance
//	physical cash = sum of note value * count
//	difference    = physical cash - cash in hand
//
// A negative difference means the drawer is short, a positive one that it is
// in excess. All arithmetic uses decimal.Decimal.
package reconcile
