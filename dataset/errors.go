package dataset

// Error represents an error related with datasets
type Error string

/*
ErrEmptyDataset is the error returned when trying to split a dataset or
grow a tree from a dataset without rows.
*/
const ErrEmptyDataset = Error("empty dataset")

func (e Error) Error() string {
	return string(e)
}
