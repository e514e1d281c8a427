package sentiment

type entry struct {
	polarity     float64
	subjectivity float64
}

// words maps lowercase tokens to their affect scores. Superlatives sit at
// polarity 1.0 so that appending one to any text can never lower the mean.
var words = map[string]entry{
	"excellent":   {1.0, 1.0},
	"amazing":     {1.0, 1.0},
	"wonderful":   {1.0, 1.0},
	"fantastic":   {1.0, 1.0},
	"perfect":     {1.0, 1.0},
	"outstanding": {1.0, 1.0},
	"awesome":     {1.0, 1.0},
	"incredible":  {1.0, 1.0},
	"superb":      {1.0, 1.0},
	"best":        {1.0, 0.3},
	"brilliant":   {1.0, 0.9},

	"great":           {0.8, 0.75},
	"happy":           {0.8, 1.0},
	"pleased":         {0.7, 0.8},
	"good":            {0.7, 0.6},
	"love":            {0.6, 0.6},
	"satisfied":       {0.6, 0.8},
	"nice":            {0.6, 0.9},
	"helpful":         {0.6, 0.5},
	"kind":            {0.6, 0.9},
	"glad":            {0.5, 1.0},
	"friendly":        {0.5, 0.6},
	"enjoy":           {0.5, 0.6},
	"appreciate":      {0.4, 0.5},
	"easy":            {0.4, 0.8},
	"smooth":          {0.4, 0.6},
	"convenient":      {0.4, 0.7},
	"efficient":       {0.4, 0.5},
	"recommend":       {0.4, 0.5},
	"simple":          {0.3, 0.6},
	"quick":           {0.3, 0.5},
	"thank":           {0.3, 0.4},
	"thanks":          {0.3, 0.4},
	"professional":    {0.3, 0.4},
	"decent":          {0.3, 0.5},
	"fast":            {0.2, 0.5},
	"okay":            {0.2, 0.5},
	"fine":            {0.2, 0.6},
	"straightforward": {0.2, 0.4},

	"terrible":       {-1.0, 1.0},
	"horrible":       {-1.0, 1.0},
	"awful":          {-1.0, 1.0},
	"worst":          {-1.0, 0.3},
	"angry":          {-0.8, 0.9},
	"rude":           {-0.8, 0.9},
	"hate":           {-0.8, 0.9},
	"furious":        {-0.8, 0.9},
	"bad":            {-0.7, 0.67},
	"upset":          {-0.7, 0.8},
	"frustrated":     {-0.7, 0.8},
	"frustrating":    {-0.7, 0.8},
	"unacceptable":   {-0.7, 0.9},
	"disappointed":   {-0.6, 0.8},
	"disappointing":  {-0.6, 0.8},
	"unhappy":        {-0.6, 0.8},
	"dissatisfied":   {-0.6, 0.8},
	"annoying":       {-0.6, 0.8},
	"annoyed":        {-0.6, 0.8},
	"poor":           {-0.6, 0.6},
	"unprofessional": {-0.6, 0.7},
	"wrong":          {-0.5, 0.6},
	"confusing":      {-0.5, 0.7},
	"difficult":      {-0.4, 0.6},
	"complicated":    {-0.4, 0.6},
	"hard":           {-0.3, 0.5},
	"slow":           {-0.3, 0.4},
	"sorry":          {-0.3, 0.9},
	"problem":        {-0.3, 0.4},
	"issue":          {-0.2, 0.3},
}

var negators = map[string]struct{}{
	"not":       {},
	"never":     {},
	"no":        {},
	"nothing":   {},
	"don't":     {},
	"didn't":    {},
	"doesn't":   {},
	"wasn't":    {},
	"isn't":     {},
	"aren't":    {},
	"won't":     {},
	"can't":     {},
	"cannot":    {},
	"couldn't":  {},
	"wouldn't":  {},
	"shouldn't": {},
}

var intensifiers = map[string]struct{}{
	"very":       {},
	"really":     {},
	"extremely":  {},
	"so":         {},
	"absolutely": {},
	"incredibly": {},
	"totally":    {},
	"completely": {},
	"highly":     {},
}
