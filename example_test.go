package thicket_test

import (
	"fmt"
	"log"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/pkg/domain"
)

// ExampleNew shows checks propagating down to children and up to parents.
func ExampleNew() {
	items := []domain.Item{
		{ID: "fruits", Label: "Fruits", Children: []domain.Item{
			{ID: "apple", Label: "Apple"},
			{ID: "pear", Label: "Pear"},
		}},
		{ID: "bread", Label: "Bread"},
	}

	tr, err := thicket.New(items, thicket.WithSelectionChange(func(ids []string) {
		fmt.Println("selected:", ids)
	}))
	if err != nil {
		log.Fatal(err)
	}

	tr.SetChecked("apple", true)
	fmt.Println("fruits partial:", tr.ItemState("fruits").Indeterminate)

	tr.SetChecked("pear", true)
	tr.SetChecked("fruits", false)

	// Output:
	// selected: [apple]
	// fruits partial: true
	// selected: [fruits apple pear]
	// selected: []
}

// ExampleWithSelectionOrder keeps ids in the order they were picked.
func ExampleWithSelectionOrder() {
	items := []domain.Item{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	tr, err := thicket.New(items, thicket.WithSelectionOrder(domain.OrderInsertion))
	if err != nil {
		log.Fatal(err)
	}
	tr.SetChecked("c", true)
	tr.SetChecked("a", true)

	fmt.Println(tr.SelectedItems())
	// Output: [c a]
}
