// Package khata is a vendor ledger engine for Go applications.
//
// A khata records money-in and money-out entries between a vendor and its
// customers or suppliers and derives running balances from them. It is a
// library, not a service: import it into your application and give it a
// store.
//
//   - Append-only entries; corrections are new offsetting entries
//   - One balance convention for every party kind, labelled per kind
//   - Entries excluded from the balance (cash-and-carry POS sales) still
//     count in statements
//   - Recurring templates expanded idempotently, by hand or by a background sweep
//   - Statements grouped into Today, Yesterday, weekday and date buckets
//   - Memory, PostgreSQL, SQLite and MongoDB stores
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/khata"
//	    "github.com/xraph/khata/store/memory"
//	    "github.com/xraph/khata/transaction"
//	)
//
//	k := khata.New(memory.New(), khata.WithCurrency("inr"))
//	if err := k.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer k.Stop()
//
//	amount, _ := k.ParseAmount("1200")
//	err := k.Create(ctx, &transaction.Transaction{
//	    VendorID:      "vnd_1",
//	    CustomerID:    "cus_1",
//	    Type:          transaction.TypeOut,
//	    Amount:        amount,
//	    Category:      transaction.CategoryProductSale,
//	    PaymentMethod: transaction.MethodCredit,
//	})
//
//	summary, _ := k.PartyBalance(ctx, "vnd_1", khata.Customer("cus_1"))
//	fmt.Println(balance.Describe(transaction.PartyCustomer, summary))
//	// customer will pay you ₹1,200.00
//
// # Balances
//
// Balance is TotalIn minus TotalOut over entries not excluded from the
// balance, for every party kind. Negative means the party will pay the
// vendor; positive means the vendor will pay the party. See package balance.
//
// # Corrections
//
// Posted entries never change their amount, type, date, party or category.
// RequestEdit only amends notes and attachments. Reverse posts the opposite
// entry with ReferenceType "correction"; Correct reverses and posts a
// replacement.
//
// # TypeID
//
// Entries use TypeIDs with the ltx prefix:
//
//	ltx_01h2xcejqtf2nbrexx3vqjhp41
package khata
