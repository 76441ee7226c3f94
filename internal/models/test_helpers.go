package models

// NewTestRateCardSet returns a small rate card with one ambiguous size label
// (two "275x185mm" entries differing by description).
func NewTestRateCardSet() RateCardSet {
	return RateCardSet{
		Version: "test",
		Cards: []RateCard{
			{
				Publication: "Le Soir",
				AdTypes: []AdType{
					{
						Name: "Publicité Display",
						Positions: []Position{
							{
								Name: "1/2 page",
								Sizes: []AdSize{
									{Size: "275x185mm", Price: 4500, Description: "Demi-page horizontale couleur"},
									{Size: "275x185mm", Price: 3600, Description: "Demi-page horizontale N&B"},
								},
							},
							{
								Name: "1 page",
								Sizes: []AdSize{
									{Size: "275x380mm", Price: 8500, Description: "Pleine page couleur"},
								},
							},
						},
					},
				},
			},
			{
				Publication: "Sudinfo.be",
				AdTypes: []AdType{
					{
						Name: "Vidéo",
						Positions: []Position{
							{
								Name:  "Pre-roll",
								Sizes: []AdSize{{Size: "30 secondes", Price: 25}},
							},
						},
					},
				},
			},
		},
	}
}
