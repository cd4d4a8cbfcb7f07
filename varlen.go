package odbcscan

// readVarColumn reads one variable-length value with the grow-and-retry
// protocol. The driver cannot always report an item's byte length up
// front: a bounded read either completes, or reports "more data remains"
// with an exact residual length or with SQL_NO_TOTAL. On the unknown
// case the buffer doubles and the read is reissued; on the exact case it
// grows to precisely the needed size. Text reads (SQL_C_CHAR) reserve
// one byte per read for the C-string terminator, which is stripped from
// the result.
//
// A nil slice with isNull=true is an immediate NULL.
func readVarColumn(api odbcAPI, stmt SQLHANDLE, col int, cType SQLSMALLINT) (data []byte, isNull bool, err error) {
	termSize := 0
	if cType == SQL_C_CHAR {
		termSize = 1
	}

	buf := varlenPool.Get()
	if len(buf) < varlenInitialSize {
		buf = make([]byte, varlenInitialSize)
	}
	totalRead := 0

	for {
		window := buf[totalRead:]
		indicator, ret := api.GetData(stmt, col, cType, window)

		switch {
		case ret == SQL_NO_DATA:
			// Everything was consumed by previous reads.
			return finishVarColumn(buf, totalRead), false, nil

		case ret == SQL_SUCCESS:
			if indicator == SQL_NULL_DATA {
				varlenPool.Put(buf)
				return nil, true, nil
			}
			totalRead += int(indicator)
			return finishVarColumn(buf, totalRead), false, nil

		case ret == SQL_SUCCESS_WITH_INFO:
			available := len(window)
			if indicator == SQL_NO_TOTAL {
				// Unknown residual: keep what fits, double and retry.
				totalRead += available - termSize
				buf = growVarBuffer(buf, len(buf)*2)
			} else if int(indicator) >= available {
				// Exact residual: indicator counts all bytes that were
				// left before this read, so size the buffer precisely.
				captured := available - termSize
				totalRead += captured
				needed := totalRead + int(indicator) - captured + termSize
				buf = growVarBuffer(buf, needed)
			} else {
				totalRead += int(indicator)
				return finishVarColumn(buf, totalRead), false, nil
			}

		default:
			varlenPool.Put(buf)
			diag := api.DiagText(SQL_HANDLE_STMT, stmt)
			return nil, false, driverError(ErrDriver, "read variable-length column", diag)
		}
	}
}

func growVarBuffer(buf []byte, size int) []byte {
	if size <= len(buf) {
		return buf
	}
	grown := make([]byte, size)
	copy(grown, buf)
	varlenPool.Put(buf)
	return grown
}

// finishVarColumn copies the captured bytes out of the pooled scratch
// buffer and recycles it.
func finishVarColumn(buf []byte, totalRead int) []byte {
	if totalRead < 0 {
		totalRead = 0
	}
	out := make([]byte, totalRead)
	copy(out, buf[:totalRead])
	varlenPool.Put(buf)
	return out
}
